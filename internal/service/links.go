package service

import (
	"strings"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

// Links are the retrieval URLs issued for a file record.
type Links struct {
	ViewLink     string `json:"view_link"`
	DownloadLink string `json:"download_link"`
}

// IssueLinks derives the view and download URLs for a record. Both encode
// only the storage-key-derived public filename, never the record id or the
// owner, and stay stable for the life of the record. They carry no
// authorization: the retrieval service re-checks policy on every fetch.
func IssueLinks(baseURL string, file *model.File) Links {
	base := strings.TrimSuffix(baseURL, "/")
	return Links{
		ViewLink:     base + "/files/view/" + file.Filename,
		DownloadLink: base + "/files/download/" + file.Filename,
	}
}
