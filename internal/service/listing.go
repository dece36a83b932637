package service

import (
	"context"
	"fmt"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
)

// PageSpec is the caller-supplied pagination request (1-based page).
type PageSpec struct {
	Page     int
	PageSize int
}

// FilePage is one page of a listing plus the total count of visible
// records for the envelope.
type FilePage struct {
	Files []*model.File
	Count int
}

// ListingService applies the visibility rule as a repository filter:
// public records plus the requester's own. Anonymous requesters reduce
// the filter to public records only.
type ListingService struct {
	fileRepo        repository.FileRepository
	defaultPageSize int
	maxPageSize     int
}

func NewListingService(fileRepo repository.FileRepository, defaultPageSize, maxPageSize int) *ListingService {
	return &ListingService{
		fileRepo:        fileRepo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (s *ListingService) List(ctx context.Context, ident model.Identity, spec PageSpec) (*FilePage, error) {
	filter := repository.ListFilter{OwnerID: ident.UserID}
	page := s.normalize(spec)

	files, err := s.fileRepo.List(filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	count, err := s.fileRepo.Count(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	if files == nil {
		files = []*model.File{}
	}

	return &FilePage{Files: files, Count: count}, nil
}

// normalize clamps the page spec to configured bounds.
func (s *ListingService) normalize(spec PageSpec) repository.Page {
	size := spec.PageSize
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	pageNum := spec.Page
	if pageNum < 1 {
		pageNum = 1
	}

	return repository.Page{
		Limit:  size,
		Offset: (pageNum - 1) * size,
	}
}
