// Package policy holds the access decision function for file operations.
// It is pure: all side effects (counter updates, logging) belong to callers.
package policy

import (
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

// Operation is the kind of access being decided.
type Operation string

const (
	OpList     Operation = "list" // inclusion in a listing result
	OpView     Operation = "view"
	OpDownload Operation = "download"
	OpModify   Operation = "modify"
	OpDelete   Operation = "delete"
)

// Decide reports whether ident may perform op on a file with the given access
// level. isOwner must be true only for an authenticated identity equal to the
// file's owner. The function is total over all inputs; unknown operations and
// unknown access levels deny.
func Decide(op Operation, access model.AccessLevel, ident model.Identity, isOwner bool) bool {
	switch op {
	case OpModify, OpDelete:
		return isOwner
	case OpList:
		return access == model.AccessPublic || isOwner
	case OpView, OpDownload:
		if access == model.AccessPublic || isOwner {
			return true
		}
		return access == model.AccessByLink && ident.Authenticated()
	}
	return false
}
