package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"cloudbucket/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var fileColumns = []string{"id", "owner", "filename", "content_type", "size", "storage_path", "uploaded_at"}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	f := &model.StoredFile{
		ID:          "6f1c1c52-6c1f-4a55-9a42-7f7d0d3f4b21",
		Owner:       "alice",
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        10,
		StoragePath: "/data/u/report.pdf",
		UploadedAt:  now,
	}

	rows := sqlmock.NewRows(fileColumns).
		AddRow(f.ID, f.Owner, f.Filename, f.ContentType, f.Size, f.StoragePath, f.UploadedAt)

	mock.ExpectQuery("INSERT INTO stored_files").
		WithArgs(f.ID, f.Owner, f.Filename, f.ContentType, f.Size, f.StoragePath, f.UploadedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.Equal(t, f, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO stored_files").WillReturnError(errors.New("connection refused"))

	result, err := NewFilePostgres(db).Create(context.Background(), &model.StoredFile{ID: "x"})

	assert.EqualError(t, err, "connection refused")
	assert.Nil(t, result)
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(fileColumns).
			AddRow("test-id", "alice", "file.txt", "text/plain", 100, "/data/u/file.txt", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM stored_files WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, "test-id", f.ID)
		assert.Equal(t, "alice", f.Owner)
		assert.Equal(t, time.UTC, f.UploadedAt.Location())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stored_files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})
}

func TestFilePostgres_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(fileColumns).
			AddRow("id-1", "alice", "a.txt", "text/plain", 1, "/data/u/a.txt", time.Now()).
			AddRow("id-2", "alice", "b.txt", "", 2, "/data/u/b.txt", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM stored_files WHERE owner = (.+) ORDER BY uploaded_at ASC, id ASC").
			WithArgs("alice").
			WillReturnRows(rows)

		items, err := repo.ListByOwner(ctx, "alice")

		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "id-1", items[0].ID)
		assert.Equal(t, "id-2", items[1].ID)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stored_files WHERE owner").
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows(fileColumns))

		items, err := repo.ListByOwner(ctx, "bob")

		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stored_files WHERE owner").
			WithArgs("carol").
			WillReturnError(errors.New("db down"))

		items, err := repo.ListByOwner(ctx, "carol")

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
