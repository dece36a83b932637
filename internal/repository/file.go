package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
	// ErrDuplicateKey signals a unique-constraint violation on the storage
	// key (filename / storage_path). Callers regenerate the key and retry.
	ErrDuplicateKey = errors.New("duplicate storage key")
)

// ListFilter restricts a listing to records visible to a requester.
// An empty OwnerID (anonymous) matches public records only; otherwise
// public records plus the owner's own.
type ListFilter struct {
	OwnerID string
}

// Page is a LIMIT/OFFSET page specification. Limit is expected to be
// clamped by the caller before it reaches the repository.
type Page struct {
	Limit  int
	Offset int
}

type FileRepository interface {
	Create(file *model.File) error
	ByID(id string) (*model.File, error)
	ByFilename(filename string) (*model.File, error)
	UpdateAccess(id string, access model.AccessLevel) error
	IncrementDownloadCount(id string) error
	Delete(id string) error
	List(filter ListFilter, page Page) ([]*model.File, error)
	Count(filter ListFilter) (int, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, owner_id, access, filename, original_name, mime_type, size, storage_path, download_count, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		file.ID,
		file.OwnerID,
		file.Access,
		file.Filename,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.DownloadCount,
		file.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateKey
	}

	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByFilename(filename string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE filename = $1`

	err := r.db.Get(file, query, filename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) UpdateAccess(id string, access model.AccessLevel) error {
	query := `UPDATE files SET access = $1 WHERE id = $2`

	res, err := r.db.Exec(query, access, id)
	if err != nil {
		return err
	}

	return checkAffected(res)
}

// IncrementDownloadCount bumps the counter by one inside the database.
// The read-modify-write happens in a single UPDATE, so concurrent
// downloads of the same record cannot lose updates.
func (r *fileRepository) IncrementDownloadCount(id string) error {
	query := `UPDATE files SET download_count = download_count + 1 WHERE id = $1`

	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkAffected(res)
}

func (r *fileRepository) Delete(id string) error {
	query := `DELETE FROM files WHERE id = $1`

	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkAffected(res)
}

// List returns visible records most-downloaded first. The id tiebreak
// keeps pagination stable between requests.
func (r *fileRepository) List(filter ListFilter, page Page) ([]*model.File, error) {
	var files []*model.File
	var err error

	if filter.OwnerID == "" {
		query := `SELECT * FROM files WHERE access = $1
		          ORDER BY download_count DESC, id LIMIT $2 OFFSET $3`
		err = r.db.Select(&files, query, model.AccessPublic, page.Limit, page.Offset)
	} else {
		query := `SELECT * FROM files WHERE access = $1 OR owner_id = $2
		          ORDER BY download_count DESC, id LIMIT $3 OFFSET $4`
		err = r.db.Select(&files, query, model.AccessPublic, filter.OwnerID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Count(filter ListFilter) (int, error) {
	var count int
	var err error

	if filter.OwnerID == "" {
		err = r.db.Get(&count, `SELECT COUNT(*) FROM files WHERE access = $1`, model.AccessPublic)
	} else {
		err = r.db.Get(&count, `SELECT COUNT(*) FROM files WHERE access = $1 OR owner_id = $2`,
			model.AccessPublic, filter.OwnerID)
	}

	return count, err
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFileNotFound
	}
	return nil
}

// isUniqueViolation matches unique-constraint errors for both supported
// drivers (sqlite: "UNIQUE constraint failed", postgres: SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value")
}
