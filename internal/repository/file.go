package repository

import (
	"context"

	"cloudbucket/internal/model"
)

// FileRepository defines data access for stored file records using SQL queries only.
// Persistence only; the service layer owns validation.
type FileRepository interface {
	// Create inserts a new record. The caller provides every field, including ID and UploadedAt.
	// Returns the stored record as read back from the database.
	Create(ctx context.Context, f *model.StoredFile) (*model.StoredFile, error)

	// FindByID returns a record by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.StoredFile, error)

	// ListByOwner returns every record of owner ordered by upload time, then ID.
	ListByOwner(ctx context.Context, owner string) ([]model.StoredFile, error)
}
