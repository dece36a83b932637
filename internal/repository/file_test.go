package repository

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/db"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

func newTestRepo(t *testing.T) *fileRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	// Single connection keeps the in-process sqlite writer serialized
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return NewFileRepository(database)
}

func newTestFile(ownerID string, access model.AccessLevel) *model.File {
	key := uuid.New().String()
	return &model.File{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Access:       access,
		Filename:     key + ".txt",
		OriginalName: "report.txt",
		MimeType:     "text/plain",
		Size:         42,
		StoragePath:  "files/" + ownerID + "/" + key + ".txt",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateAndLookup(t *testing.T) {
	repo := newTestRepo(t)

	file := newTestFile("u1", model.AccessOnlyAuthor)
	require.NoError(t, repo.Create(file))

	byID, err := repo.ByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.OwnerID, byID.OwnerID)
	assert.Equal(t, model.AccessOnlyAuthor, byID.Access)
	assert.EqualValues(t, 0, byID.DownloadCount)

	byName, err := repo.ByFilename(file.Filename)
	require.NoError(t, err)
	assert.Equal(t, file.ID, byName.ID)

	_, err = repo.ByID("missing")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = repo.ByFilename("missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCreateDuplicateStorageKey(t *testing.T) {
	repo := newTestRepo(t)

	file := newTestFile("u1", model.AccessPublic)
	require.NoError(t, repo.Create(file))

	dup := newTestFile("u2", model.AccessPublic)
	dup.Filename = file.Filename
	dup.StoragePath = file.StoragePath

	err := repo.Create(dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestUpdateAccess(t *testing.T) {
	repo := newTestRepo(t)

	file := newTestFile("u1", model.AccessOnlyAuthor)
	require.NoError(t, repo.Create(file))

	require.NoError(t, repo.UpdateAccess(file.ID, model.AccessPublic))

	got, err := repo.ByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccessPublic, got.Access)

	assert.ErrorIs(t, repo.UpdateAccess("missing", model.AccessPublic), ErrFileNotFound)
}

func TestIncrementDownloadCountConcurrent(t *testing.T) {
	repo := newTestRepo(t)

	file := newTestFile("u1", model.AccessPublic)
	require.NoError(t, repo.Create(file))

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementDownloadCount(file.ID)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.ByID(file.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.DownloadCount, "concurrent increments must not lose updates")
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	file := newTestFile("u1", model.AccessPublic)
	require.NoError(t, repo.Create(file))

	require.NoError(t, repo.Delete(file.ID))

	_, err := repo.ByID(file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// second delete reports not found, not a storage complaint
	assert.ErrorIs(t, repo.Delete(file.ID), ErrFileNotFound)
}

func TestListVisibilityAndOrdering(t *testing.T) {
	repo := newTestRepo(t)

	private := newTestFile("alice", model.AccessOnlyAuthor)
	byLink := newTestFile("alice", model.AccessByLink)
	popular := newTestFile("alice", model.AccessPublic)
	quiet := newTestFile("bob", model.AccessPublic)

	for _, f := range []*model.File{private, byLink, popular, quiet} {
		require.NoError(t, repo.Create(f))
	}
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.IncrementDownloadCount(popular.ID))
	}

	page := Page{Limit: 10, Offset: 0}

	t.Run("anonymous sees only public", func(t *testing.T) {
		files, err := repo.List(ListFilter{}, page)
		require.NoError(t, err)
		require.Len(t, files, 2)
		// most-downloaded first
		assert.Equal(t, popular.ID, files[0].ID)
		assert.Equal(t, quiet.ID, files[1].ID)

		count, err := repo.Count(ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("owner sees own plus public", func(t *testing.T) {
		files, err := repo.List(ListFilter{OwnerID: "alice"}, page)
		require.NoError(t, err)
		assert.Len(t, files, 4)

		for _, f := range files {
			if f.Access == model.AccessOnlyAuthor || f.Access == model.AccessByLink {
				assert.Equal(t, "alice", f.OwnerID)
			}
		}
	})

	t.Run("non-owner never sees only_author records", func(t *testing.T) {
		files, err := repo.List(ListFilter{OwnerID: "bob"}, page)
		require.NoError(t, err)
		assert.Len(t, files, 2)
		for _, f := range files {
			assert.Equal(t, model.AccessPublic, f.Access)
		}
	})

	t.Run("pagination clamps to page bounds", func(t *testing.T) {
		files, err := repo.List(ListFilter{}, Page{Limit: 1, Offset: 0})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, popular.ID, files[0].ID)

		files, err = repo.List(ListFilter{}, Page{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, quiet.ID, files[0].ID)
	})
}
