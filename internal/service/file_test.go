package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/storage"
)

var (
	alice = model.Identity{UserID: "alice"}
	bob   = model.Identity{UserID: "bob"}
)

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("requires authentication", func(t *testing.T) {
		_, err := env.files.Upload(ctx, model.Anonymous, "", "a.txt", "text/plain", 3, strings.NewReader("abc"))
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := env.files.Upload(ctx, alice, "", "a.txt", "text/plain", 0, strings.NewReader(""))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown access level", func(t *testing.T) {
		_, err := env.files.Upload(ctx, alice, "secret", "a.txt", "text/plain", 3, strings.NewReader("abc"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("defaults to only_author", func(t *testing.T) {
		file := env.upload(t, "alice", "", "hello")
		assert.Equal(t, model.AccessOnlyAuthor, file.Access)
		assert.Equal(t, "alice", file.OwnerID)
		assert.EqualValues(t, 0, file.DownloadCount)
	})

	t.Run("storage key is opaque and keeps the extension", func(t *testing.T) {
		file := env.upload(t, "alice", model.AccessPublic, "hello")
		assert.NotContains(t, file.Filename, "notes")
		assert.True(t, strings.HasSuffix(file.Filename, ".txt"))
		assert.Equal(t, "files/alice/"+file.Filename, file.StoragePath)

		// blob lands in storage under the generated key
		rc, err := env.storage.Get(ctx, file.StoragePath)
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("two uploads of the same name never collide", func(t *testing.T) {
		first := env.upload(t, "alice", model.AccessPublic, "one")
		second := env.upload(t, "alice", model.AccessPublic, "two")
		assert.NotEqual(t, first.Filename, second.Filename)
		assert.NotEqual(t, first.StoragePath, second.StoragePath)
	})
}

func TestGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	private := env.upload(t, "alice", model.AccessOnlyAuthor, "secret")

	_, err := env.files.Get(ctx, private.ID, alice)
	assert.NoError(t, err)

	_, err = env.files.Get(ctx, private.ID, bob)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.files.Get(ctx, private.ID, model.Anonymous)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.files.Get(ctx, "missing", alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file := env.upload(t, "alice", model.AccessOnlyAuthor, "secret")

	t.Run("owner may change the level", func(t *testing.T) {
		updated, err := env.files.UpdateAccess(ctx, file.ID, model.AccessPublic, alice)
		require.NoError(t, err)
		assert.Equal(t, model.AccessPublic, updated.Access)
	})

	t.Run("non-owner is forbidden and the record is unchanged", func(t *testing.T) {
		_, err := env.files.UpdateAccess(ctx, file.ID, model.AccessByLink, bob)
		assert.ErrorIs(t, err, ErrForbidden)

		got, err := env.files.Get(ctx, file.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, model.AccessPublic, got.Access)
	})

	t.Run("invalid level is rejected", func(t *testing.T) {
		_, err := env.files.UpdateAccess(ctx, file.ID, "everyone", alice)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

type failingUpdateRepo struct {
	repository.FileRepository
}

func (r failingUpdateRepo) UpdateAccess(id string, access model.AccessLevel) error {
	return errors.New("write failed")
}

func TestUpdateAccessInvalidatesCacheBeforeWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file := env.upload(t, "alice", model.AccessPublic, "cached record")

	// prime the record cache
	_, err := env.retrieval.View(ctx, file.Filename, model.Anonymous)
	require.NoError(t, err)
	_, ok := env.cache.Get(file.Filename)
	require.True(t, ok)

	files := NewFileService(failingUpdateRepo{env.repo}, env.storage, env.cache, testBaseURL)
	_, err = files.UpdateAccess(ctx, file.ID, model.AccessOnlyAuthor, alice)
	assert.Error(t, err)

	// even a failed write drops the entry: invalidation happens up front
	_, ok = env.cache.Get(file.Filename)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file := env.upload(t, "alice", model.AccessPublic, "doomed")

	t.Run("non-owner is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, env.files.Delete(ctx, file.ID, bob), ErrForbidden)
		assert.ErrorIs(t, env.files.Delete(ctx, file.ID, model.Anonymous), ErrForbidden)
	})

	t.Run("owner delete removes metadata and blob", func(t *testing.T) {
		require.NoError(t, env.files.Delete(ctx, file.ID, alice))

		_, err := env.files.Get(ctx, file.ID, alice)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = env.storage.Get(ctx, file.StoragePath)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		assert.ErrorIs(t, env.files.Delete(ctx, file.ID, alice), ErrNotFound)
	})

	t.Run("blob already absent still succeeds", func(t *testing.T) {
		other := env.upload(t, "alice", model.AccessPublic, "gone early")
		require.NoError(t, env.storage.Delete(ctx, other.StoragePath))
		assert.NoError(t, env.files.Delete(ctx, other.ID, alice))
	})
}

func TestIssueLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file := env.upload(t, "alice", model.AccessPublic, "linked")

	got, links, err := env.files.IssueLinks(ctx, file.ID, model.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
	assert.Equal(t, testBaseURL+"/files/view/"+file.Filename, links.ViewLink)
	assert.Equal(t, testBaseURL+"/files/download/"+file.Filename, links.DownloadLink)

	// links never leak the record id or the owner
	assert.NotContains(t, links.ViewLink, file.ID)
	assert.NotContains(t, links.DownloadLink, "alice")

	t.Run("view policy gates issuance", func(t *testing.T) {
		private := env.upload(t, "alice", model.AccessOnlyAuthor, "hidden")
		_, _, err := env.files.IssueLinks(ctx, private.ID, bob)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
