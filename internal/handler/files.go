package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/ctxkeys"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/service"
)

var validate = validator.New()

type FilesHandler struct {
	files         *service.FileService
	retrieval     *service.RetrievalService
	listing       *service.ListingService
	maxUploadSize int64
}

func NewFilesHandler(files *service.FileService, retrieval *service.RetrievalService, listing *service.ListingService, maxUploadSize int64) *FilesHandler {
	return &FilesHandler{
		files:         files,
		retrieval:     retrieval,
		listing:       listing,
		maxUploadSize: maxUploadSize,
	}
}

type listResponse struct {
	Count   int           `json:"count"`
	Results []*model.File `json:"results"`
}

// List handles GET /files. Anonymous requests see public records only.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())

	spec := service.PageSpec{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 0),
	}

	page, err := h.listing.List(r.Context(), ident, spec)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{Count: page.Count, Results: page.Files})
}

type createForm struct {
	Access string `validate:"omitempty,oneof=only_author by_link public"`
}

// Create handles POST /files (multipart: file, access?).
func (h *FilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication credentials were not provided.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "Malformed multipart body or file too large.")
		return
	}

	form := createForm{Access: r.FormValue("access")}
	if err := validate.Struct(form); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, fmt.Sprintf("Invalid access level %q.", form.Access))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "No file was submitted.")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	created, err := h.files.Upload(r.Context(), ident, model.AccessLevel(form.Access), header.Filename, mimeType, header.Size, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /files/{id}.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())

	file, err := h.files.Get(r.Context(), r.PathValue("id"), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

type updateAccessRequest struct {
	Access string `json:"access" validate:"required,oneof=only_author by_link public"`
}

// UpdateAccess handles PATCH /files/{id}. Owner only.
func (h *FilesHandler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req updateAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "Malformed JSON body.")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, fmt.Sprintf("Invalid access level %q.", req.Access))
		return
	}

	file, err := h.files.UpdateAccess(r.Context(), r.PathValue("id"), model.AccessLevel(req.Access), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /files/{id}. Owner only.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())
	if !ident.Authenticated() {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication credentials were not provided.")
		return
	}

	if err := h.files.Delete(r.Context(), r.PathValue("id"), ident); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type linkResponse struct {
	ID           string `json:"id"`
	ViewLink     string `json:"view_link"`
	DownloadLink string `json:"download_link"`
}

// Link handles GET /files/{id}/link.
func (h *FilesHandler) Link(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())

	file, links, err := h.files.IssueLinks(r.Context(), r.PathValue("id"), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, linkResponse{
		ID:           file.ID,
		ViewLink:     links.ViewLink,
		DownloadLink: links.DownloadLink,
	})
}

// View handles GET /files/view/{filename}: serves the blob inline.
func (h *FilesHandler) View(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())

	content, err := h.retrieval.View(r.Context(), r.PathValue("filename"), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", content.File.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}

// Download handles GET /files/download/{filename}: serves the blob as an
// attachment and counts the download.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	ident := ctxkeys.Identity(r.Context())

	content, err := h.retrieval.Download(r.Context(), r.PathValue("filename"), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", content.File.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.File.OriginalName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
