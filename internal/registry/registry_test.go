package registry

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloudbucket/internal/config"
	"cloudbucket/internal/database"
	"cloudbucket/internal/database/migration"
	"cloudbucket/internal/model"
	repoMocks "cloudbucket/internal/repository/mocks"
	"cloudbucket/internal/repository/sqlite"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamp", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		reg := New(mRepo,
			WithClock(func() time.Time { return fixedNow }),
			WithIDGenerator(func() string { return "fixed-id" }),
		)

		mRepo.On("Create", ctx, mock.MatchedBy(func(f *model.StoredFile) bool {
			return f.ID == "fixed-id" &&
				f.Owner == "alice" &&
				f.Filename == "report.pdf" &&
				f.ContentType == "application/pdf" &&
				f.Size == 10 &&
				f.StoragePath == "/data/u/report.pdf" &&
				f.UploadedAt.Equal(fixedNow) &&
				f.UploadedAt.Location() == time.UTC
		})).Return(&model.StoredFile{ID: "fixed-id", Owner: "alice"}, nil).Once()

		f, err := reg.Create(ctx, "alice", "report.pdf", "application/pdf", 10, "/data/u/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", f.ID)
		mRepo.AssertExpectations(t)
	})

	t.Run("fresh uuid per record", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		reg := New(mRepo)

		var ids []string
		mRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			ids = append(ids, args.Get(1).(*model.StoredFile).ID)
		}).Return(&model.StoredFile{}, nil).Twice()

		_, err := reg.Create(ctx, "alice", "a.txt", "", 1, "/data/u/a.txt")
		require.NoError(t, err)
		_, err = reg.Create(ctx, "alice", "a.txt", "", 1, "/data/u/a.txt")
		require.NoError(t, err)

		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
		for _, id := range ids {
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		reg := New(new(repoMocks.MockFileRepository))

		_, err := reg.Create(ctx, "", "a.txt", "", 1, "/p")
		assert.ErrorIs(t, err, ErrInvalidRecord)
		_, err = reg.Create(ctx, "alice", "", "", 1, "/p")
		assert.ErrorIs(t, err, ErrInvalidRecord)
		_, err = reg.Create(ctx, "alice", "a.txt", "", 1, "")
		assert.ErrorIs(t, err, ErrInvalidRecord)
		_, err = reg.Create(ctx, "alice", "a.txt", "", -1, "/p")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("storage fault", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		reg := New(mRepo)
		dbErr := errors.New("connection refused")
		mRepo.On("Create", ctx, mock.Anything).Return(nil, dbErr)

		f, err := reg.Create(ctx, "alice", "a.txt", "", 1, "/data/u/a.txt")
		assert.Nil(t, f)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestRegistry_FindByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name    string
		id      string
		setup   func(mRepo *repoMocks.MockFileRepository)
		wantErr error
	}{
		{
			name: "found",
			id:   id,
			setup: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, id).Return(&model.StoredFile{ID: id, Owner: "bob"}, nil)
			},
		},
		{
			name: "never created",
			id:   id,
			setup: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, id).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "not a uuid",
			id:      "../../etc/passwd",
			setup:   func(mRepo *repoMocks.MockFileRepository) {},
			wantErr: ErrNotFound,
		},
		{
			name: "storage fault",
			id:   id,
			setup: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", ctx, id).Return(nil, errors.New("db down"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockFileRepository)
			tt.setup(mRepo)

			f, err := New(mRepo).FindByID(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, f)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, f.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRegistry_ListByOwner_Error(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockFileRepository)
	mRepo.On("ListByOwner", ctx, "alice").Return(nil, errors.New("db down"))

	items, err := New(mRepo).ListByOwner(ctx, "alice")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, items)
}

func TestRegistry_SQLite(t *testing.T) {
	db, err := database.NewSQLite(config.DatabaseConfig{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, migration.EnsureMigrated(ctx, db, database.DriverSQLite, slog.New(slog.NewJSONHandler(io.Discard, nil))))

	reg := New(sqlite.NewFileSQLite(db))

	created := map[string][]string{}
	for i, owner := range []string{"alice", "bob", "alice", "carol", "alice", "bob"} {
		f, err := reg.Create(ctx, owner, "file.txt", "text/plain", int64(i), "/data/u/file.txt")
		require.NoError(t, err)
		created[owner] = append(created[owner], f.ID)
	}

	for owner, ids := range created {
		items, err := reg.ListByOwner(ctx, owner)
		require.NoError(t, err)
		got := make([]string, 0, len(items))
		for _, f := range items {
			assert.Equal(t, owner, f.Owner)
			got = append(got, f.ID)
		}
		assert.ElementsMatch(t, ids, got, owner)

		again, err := reg.ListByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, items, again)
	}

	f, err := reg.FindByID(ctx, created["carol"][0])
	require.NoError(t, err)
	assert.Equal(t, "carol", f.Owner)

	_, err = reg.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
