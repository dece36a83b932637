package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/policy"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/storage"
)

// createAttempts bounds storage-key regeneration on a key collision.
// With uuid keys a collision is not expected to occur; it is retried
// locally and never surfaced to the client.
const createAttempts = 3

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	cache    *RecordCache
	baseURL  string
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, cache *RecordCache, baseURL string) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		cache:    cache,
		baseURL:  baseURL,
	}
}

// Upload stores the payload as a new file record owned by ident.
// The blob is written first; metadata is recorded only once the blob
// write succeeded, so a record never points at a missing blob.
func (s *FileService) Upload(ctx context.Context, ident model.Identity, access model.AccessLevel, originalName, mimeType string, size int64, content io.Reader) (*model.File, error) {
	if !ident.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty file payload", ErrValidation)
	}
	if access == "" {
		access = model.AccessOnlyAuthor
	}
	if !access.Valid() {
		return nil, fmt.Errorf("%w: unknown access level %q", ErrValidation, access)
	}

	ext := filepath.Ext(originalName)

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		// Storage key is generated, never derived from the user-supplied
		// filename: keys stay non-enumerable and cannot collide by name.
		filename := uuid.New().String() + ext
		storagePath := path.Join("files", ident.UserID, filename)

		if err := s.storage.Put(ctx, storagePath, content); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		file := &model.File{
			ID:            uuid.New().String(),
			OwnerID:       ident.UserID,
			Access:        access,
			Filename:      filename,
			OriginalName:  originalName,
			MimeType:      mimeType,
			Size:          size,
			StoragePath:   storagePath,
			DownloadCount: 0,
			CreatedAt:     time.Now().UTC(),
		}

		err := s.fileRepo.Create(file)
		if err == nil {
			return file, nil
		}

		// Metadata insert failed: remove the orphaned blob before retrying
		// or bailing out.
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			slog.Error("failed to clean up blob after create failure", "error", delErr, "path", storagePath)
		}

		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("failed to create file record: %w", err)
		}

		slog.Warn("storage key collision, regenerating", "attempt", attempt+1)
		lastErr = err

		// The payload reader is consumed; a retry needs a rewindable source
		seeker, ok := content.(io.Seeker)
		if !ok {
			return nil, fmt.Errorf("failed to create file record: %w", err)
		}
		if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("failed to rewind payload: %w", seekErr)
		}
	}

	return nil, fmt.Errorf("failed to create file record: %w", lastErr)
}

// Get returns the record when ident passes the view policy.
func (s *FileService) Get(ctx context.Context, id string, ident model.Identity) (*model.File, error) {
	file, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	if !policy.Decide(policy.OpView, file.Access, ident, ident.Owns(file)) {
		return nil, ErrForbidden
	}
	return file, nil
}

// UpdateAccess applies a new access level. Owner only.
func (s *FileService) UpdateAccess(ctx context.Context, id string, access model.AccessLevel, ident model.Identity) (*model.File, error) {
	if !access.Valid() {
		return nil, fmt.Errorf("%w: unknown access level %q", ErrValidation, access)
	}

	file, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	if !policy.Decide(policy.OpModify, file.Access, ident, ident.Owns(file)) {
		return nil, ErrForbidden
	}

	// Invalidate before and after the write: a lookup racing the write
	// could otherwise re-fill the cache with the row it read just before
	// the update, and the stale entry would survive a single delete.
	s.cache.Delete(file.Filename)

	if err := s.fileRepo.UpdateAccess(id, access); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update access level: %w", err)
	}

	s.cache.Delete(file.Filename)

	file.Access = access
	return file, nil
}

// Delete removes metadata and blob. Owner only. Metadata goes first so a
// surviving record can never point at a missing blob; a blob that is
// already absent still counts as a successful delete.
func (s *FileService) Delete(ctx context.Context, id string, ident model.Identity) error {
	file, err := s.byID(id)
	if err != nil {
		return err
	}
	if !policy.Decide(policy.OpDelete, file.Access, ident, ident.Owns(file)) {
		return ErrForbidden
	}

	// Same double invalidation as UpdateAccess
	s.cache.Delete(file.Filename)

	if err := s.fileRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	s.cache.Delete(file.Filename)

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		// Metadata is gone; an orphaned blob is the lesser failure mode
		slog.Error("failed to delete blob", "error", err, "path", file.StoragePath)
	}

	return nil
}

// IssueLinks returns the retrieval URLs for a record, gated by the same
// view policy the links themselves will be checked against on resolution.
func (s *FileService) IssueLinks(ctx context.Context, id string, ident model.Identity) (*model.File, Links, error) {
	file, err := s.Get(ctx, id, ident)
	if err != nil {
		return nil, Links{}, err
	}
	return file, IssueLinks(s.baseURL, file), nil
}

func (s *FileService) byID(id string) (*model.File, error) {
	file, err := s.fileRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}
