package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/service"
)

// Error codes of the JSON error body.
const (
	codeValidationError    = "VALIDATION_ERROR"
	codeUnauthorized       = "UNAUTHORIZED"
	codeForbidden          = "FORBIDDEN"
	codeNotFound           = "NOT_FOUND"
	codeStorageUnavailable = "STORAGE_UNAVAILABLE"
	codeInternalError      = "INTERNAL_ERROR"
)

// permissionDeniedMessage is returned for every policy denial. It does
// not reveal whether the object exists or is merely forbidden.
const permissionDeniedMessage = "You do not have permission to perform this action."

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondServiceError maps service sentinel errors onto the HTTP error
// taxonomy: 400 validation, 401 unauthenticated, 403 policy deny,
// 404 unknown id or filename, 502 transient storage failure.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, codeValidationError, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, codeForbidden, permissionDeniedMessage)
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Not found.")
	case errors.Is(err, service.ErrStorageUnavailable):
		respondError(w, http.StatusBadGateway, codeStorageUnavailable, "Storage temporarily unavailable, retry later.")
	default:
		slog.Error("unhandled error", "error", err)
		respondError(w, http.StatusInternalServerError, codeInternalError, "Internal server error.")
	}
}
