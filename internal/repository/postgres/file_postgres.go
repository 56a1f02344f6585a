package postgres

import (
	"context"
	"database/sql"

	"cloudbucket/internal/model"
	"cloudbucket/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.StoredFile, error) {
	var f model.StoredFile
	if err := s.Scan(
		&f.ID,
		&f.Owner,
		&f.Filename,
		&f.ContentType,
		&f.Size,
		&f.StoragePath,
		&f.UploadedAt,
	); err != nil {
		return nil, err
	}
	f.UploadedAt = f.UploadedAt.UTC()
	return &f, nil
}

// Create inserts a new row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.StoredFile) (*model.StoredFile, error) {
	const q = `
		INSERT INTO stored_files (id, owner, filename, content_type, size, storage_path, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, owner, filename, content_type, size, storage_path, uploaded_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Owner,
		f.Filename,
		f.ContentType,
		f.Size,
		f.StoragePath,
		f.UploadedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single record by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	const q = `
		SELECT id, owner, filename, content_type, size, storage_path, uploaded_at
		FROM stored_files
		WHERE id = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns all records of one owner in a stable order.
func (r *FilePostgres) ListByOwner(ctx context.Context, owner string) ([]model.StoredFile, error) {
	const q = `
		SELECT id, owner, filename, content_type, size, storage_path, uploaded_at
		FROM stored_files
		WHERE owner = $1
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
