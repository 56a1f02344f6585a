package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cloudbucket/internal/model"
	"cloudbucket/internal/repository"
)

var (
	// ErrNotFound reports that no record exists for an id.
	ErrNotFound = errors.New("file record not found")
	// ErrPersistence reports a fault in the underlying record storage. Callers may retry.
	ErrPersistence = errors.New("file registry unavailable")
	// ErrInvalidRecord reports a create call missing a required field.
	ErrInvalidRecord = errors.New("invalid file record")
)

// Registry maps owners to the files they uploaded.
type Registry interface {
	// Create assigns a fresh id and upload time, persists the record and returns it.
	Create(ctx context.Context, owner, filename, contentType string, size int64, storagePath string) (*model.StoredFile, error)

	// ListByOwner returns every record of owner. The order is stable across calls absent writes.
	ListByOwner(ctx context.Context, owner string) ([]model.StoredFile, error)

	// FindByID returns the record with the given id regardless of its owner.
	// Ownership checks belong to the caller.
	FindByID(ctx context.Context, id string) (*model.StoredFile, error)
}

// Option configures a Registry.
type Option func(*fileRegistry)

// WithClock overrides the time source used for UploadedAt.
func WithClock(now func() time.Time) Option {
	return func(r *fileRegistry) { r.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(r *fileRegistry) { r.newID = newID }
}

type fileRegistry struct {
	repo  repository.FileRepository
	now   func() time.Time
	newID func() string
}

// New constructs a Registry backed by repo.
func New(repo repository.FileRepository, opts ...Option) Registry {
	r := &fileRegistry{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *fileRegistry) Create(ctx context.Context, owner, filename, contentType string, size int64, storagePath string) (*model.StoredFile, error) {
	switch {
	case strings.TrimSpace(owner) == "":
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidRecord)
	case filename == "":
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidRecord)
	case storagePath == "":
		return nil, fmt.Errorf("%w: storage path is required", ErrInvalidRecord)
	case size < 0:
		return nil, fmt.Errorf("%w: negative size", ErrInvalidRecord)
	}

	f := &model.StoredFile{
		ID:          r.newID(),
		Owner:       owner,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		UploadedAt:  r.now().UTC(),
	}
	stored, err := r.repo.Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: create: %w", ErrPersistence, err)
	}
	return stored, nil
}

func (r *fileRegistry) ListByOwner(ctx context.Context, owner string) ([]model.StoredFile, error) {
	items, err := r.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrPersistence, err)
	}
	return items, nil
}

func (r *fileRegistry) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	// Ids are always UUIDs; anything else cannot name a record.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	f, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find: %w", ErrPersistence, err)
	}
	return f, nil
}
