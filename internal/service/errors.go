package service

import "errors"

// Sentinel errors of the service layer. Handlers map these onto the
// HTTP error taxonomy (400/401/403/404/502).
var (
	ErrNotFound           = errors.New("file not found")
	ErrForbidden          = errors.New("permission denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
