package sqlite

import (
	"context"
	"database/sql"
	"time"

	"cloudbucket/internal/model"
	"cloudbucket/internal/repository"
)

// FileSQLite is an SQLite implementation of repository.FileRepository.
// uploaded_at is stored as Unix nanoseconds.
type FileSQLite struct {
	db *sql.DB
}

// NewFileSQLite creates a new FileSQLite repository.
func NewFileSQLite(db *sql.DB) *FileSQLite {
	return &FileSQLite{db: db}
}

var _ repository.FileRepository = (*FileSQLite)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.StoredFile, error) {
	var (
		f  model.StoredFile
		ns int64
	)
	if err := s.Scan(
		&f.ID,
		&f.Owner,
		&f.Filename,
		&f.ContentType,
		&f.Size,
		&f.StoragePath,
		&ns,
	); err != nil {
		return nil, err
	}
	f.UploadedAt = time.Unix(0, ns).UTC()
	return &f, nil
}

// Create inserts a new row and returns the stored record.
func (r *FileSQLite) Create(ctx context.Context, f *model.StoredFile) (*model.StoredFile, error) {
	const q = `
		INSERT INTO stored_files (id, owner, filename, content_type, size, storage_path, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, owner, filename, content_type, size, storage_path, uploaded_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Owner,
		f.Filename,
		f.ContentType,
		f.Size,
		f.StoragePath,
		f.UploadedAt.UnixNano(),
	)
	return scanFile(row)
}

// FindByID fetches a single record by its ID.
func (r *FileSQLite) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	const q = `
		SELECT id, owner, filename, content_type, size, storage_path, uploaded_at
		FROM stored_files
		WHERE id = ?
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns all records of one owner in a stable order.
func (r *FileSQLite) ListByOwner(ctx context.Context, owner string) ([]model.StoredFile, error) {
	const q = `
		SELECT id, owner, filename, content_type, size, storage_path, uploaded_at
		FROM stored_files
		WHERE owner = ?
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StoredFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
