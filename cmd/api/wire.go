package main

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"cloudbucket/internal/config"
	"cloudbucket/internal/database"
	"cloudbucket/internal/http/middleware"
	"cloudbucket/internal/repository"
	"cloudbucket/internal/repository/postgres"
	"cloudbucket/internal/repository/sqlite"
	"cloudbucket/internal/storage"
)

func newBlobStore(c config.StorageConfig) (storage.Storage, error) {
	switch c.Driver {
	case "fs", "":
		d, err := storage.NewDisk(c.RootDir)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "minio":
		m, err := storage.NewMinIO(c.MinIO)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", c.Driver)
	}
}

func newFileRepository(driver string, db *sql.DB) (repository.FileRepository, error) {
	switch driver {
	case database.DriverPostgres:
		return postgres.NewFilePostgres(db), nil
	case database.DriverSQLite:
		return sqlite.NewFileSQLite(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// issueToken prints a bearer token for local testing: api token <owner> [ttl].
func issueToken(auth config.AuthConfig, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return errors.New("usage: api token <owner> [ttl]")
	}
	if auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	ttl := 24 * time.Hour
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
		ttl = d
	}
	tok, err := middleware.IssueToken(auth.JWTSecret, auth.JWTIssuer, args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

// bodyLimit is the fiber BodyLimit for an upload ceiling of maxUpload bytes,
// saturating instead of wrapping for very large ceilings.
func bodyLimit(maxUpload int64) int {
	if maxUpload < 0 {
		maxUpload = 0
	}
	if maxUpload > int64(math.MaxInt-bodyLimitSlack) {
		return math.MaxInt
	}
	return int(maxUpload) + bodyLimitSlack
}
