package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/policy"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/storage"
)

var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfs_downloads_total",
		Help: "Total download requests by outcome.",
	}, []string{"status"})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfs_download_bytes_total",
		Help: "Total bytes served by downloads.",
	})
)

// Content is a resolved blob ready to be written to a response.
type Content struct {
	File *model.File
	Data []byte
}

// RetrievalService serves view and download requests for issued links.
// Per request: lookup record (404 when absent), policy decision (403 on
// deny), fetch blob, and for downloads increment the counter only after
// the blob read completed.
type RetrievalService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	cache    *RecordCache
}

func NewRetrievalService(fileRepo repository.FileRepository, storage storage.Storage, cache *RecordCache) *RetrievalService {
	return &RetrievalService{
		fileRepo: fileRepo,
		storage:  storage,
		cache:    cache,
	}
}

// View serves the blob inline. Does not mutate state.
func (s *RetrievalService) View(ctx context.Context, filename string, ident model.Identity) (*Content, error) {
	file, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	if !policy.Decide(policy.OpView, file.Access, ident, ident.Owns(file)) {
		return nil, ErrForbidden
	}

	return s.fetch(ctx, file)
}

// Download serves the blob as an attachment and bumps the download
// counter. The increment happens only after the blob read succeeded: a
// failed read leaves the counter untouched.
func (s *RetrievalService) Download(ctx context.Context, filename string, ident model.Identity) (*Content, error) {
	file, err := s.resolve(filename)
	if err != nil {
		downloadsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if !policy.Decide(policy.OpDownload, file.Access, ident, ident.Owns(file)) {
		downloadsTotal.WithLabelValues("denied").Inc()
		return nil, ErrForbidden
	}

	content, err := s.fetch(ctx, file)
	if err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.fileRepo.IncrementDownloadCount(file.ID); err != nil {
		// The bytes were read successfully; serve them anyway
		slog.Error("failed to increment download count", "error", err, "file_id", file.ID)
		downloadsTotal.WithLabelValues("count_failed").Inc()
	} else {
		file.DownloadCount++
		downloadsTotal.WithLabelValues("success").Inc()
	}
	s.cache.Delete(file.Filename)

	downloadBytesTotal.Add(float64(len(content.Data)))

	return content, nil
}

// resolve maps a public filename to its record, through the cache.
func (s *RetrievalService) resolve(filename string) (*model.File, error) {
	if file, ok := s.cache.Get(filename); ok {
		return file, nil
	}

	file, err := s.fileRepo.ByFilename(filename)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve filename: %w", err)
	}

	s.cache.Set(filename, file)
	return file, nil
}

// fetch reads the whole blob. Reading to completion before responding is
// what lets Download increment the counter only for transfers whose
// bytes were fully obtained from storage.
func (s *RetrievalService) fetch(ctx context.Context, file *model.File) (*Content, error) {
	reader, err := s.storage.Get(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &Content{File: file, Data: data}, nil
}
