package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/db"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/storage"
)

const testBaseURL = "http://localhost:8080"

type testEnv struct {
	files     *FileService
	retrieval *RetrievalService
	listing   *ListingService
	repo      repository.FileRepository
	storage   storage.Storage
	cache     *RecordCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()

	database, err := db.Init("sqlite", filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	database.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	repo := repository.NewFileRepository(database)
	blobs := storage.NewLocalStorage(filepath.Join(dir, "media"))
	cache := NewRecordCache(128, time.Minute)

	return &testEnv{
		files:     NewFileService(repo, blobs, cache, testBaseURL),
		retrieval: NewRetrievalService(repo, blobs, cache),
		listing:   NewListingService(repo, 20, 100),
		repo:      repo,
		storage:   blobs,
		cache:     cache,
	}
}

func (e *testEnv) upload(t *testing.T, owner string, access model.AccessLevel, content string) *model.File {
	t.Helper()

	file, err := e.files.Upload(
		context.Background(),
		model.Identity{UserID: owner},
		access,
		"notes.txt",
		"text/plain",
		int64(len(content)),
		strings.NewReader(content),
	)
	require.NoError(t, err)
	return file
}
