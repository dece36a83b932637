package model

import (
	"time"
)

// AccessLevel controls who may see and fetch a file.
type AccessLevel string

const (
	AccessOnlyAuthor AccessLevel = "only_author" // owner only
	AccessByLink     AccessLevel = "by_link"     // any authenticated identity holding the link
	AccessPublic     AccessLevel = "public"      // everyone, including anonymous
)

// Valid reports whether the value is one of the three known levels.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessOnlyAuthor, AccessByLink, AccessPublic:
		return true
	}
	return false
}

type File struct {
	ID            string      `db:"id" json:"id"`
	OwnerID       string      `db:"owner_id" json:"owner_id"`
	Access        AccessLevel `db:"access" json:"access"`
	Filename      string      `db:"filename" json:"filename"` // public name derived from the storage key
	OriginalName  string      `db:"original_name" json:"original_name"`
	MimeType      string      `db:"mime_type" json:"mime_type"`
	Size          int64       `db:"size" json:"size"`
	StoragePath   string      `db:"storage_path" json:"-"`
	DownloadCount int64       `db:"download_count" json:"download_count"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}
