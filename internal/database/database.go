package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "modernc.org/sqlite"

	"cloudbucket/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var sqlOpen = sql.Open

// otelsql hands out a fresh driver name per Register call; registering each
// underlying driver once keeps repeated opens from exhausting its slots.
var (
	driverMu    sync.Mutex
	driverNames = map[string]string{}
)

func tracedDriver(name string, opts ...otelsql.Option) (string, error) {
	driverMu.Lock()
	defer driverMu.Unlock()
	if n, ok := driverNames[name]; ok {
		return n, nil
	}
	n, err := otelsql.Register(name, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to register otelsql: %w", err)
	}
	driverNames[name] = n
	return n, nil
}

// Open connects to the database selected by c.Driver.
func Open(c config.DatabaseConfig) (*sql.DB, error) {
	switch c.Driver {
	case DriverPostgres, "":
		return NewPostgres(c)
	case DriverSQLite:
		return NewSQLite(c)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}

// BuildPostgresDSN renders c as a postgres:// URL, escaping credentials.
// SSLMode becomes the sslmode query parameter when set.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("invalid database config: host, port, user, and name are required")
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(c.User),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String(), nil
}

// NewPostgres opens a traced pgx connection pool and verifies it with a ping.
func NewPostgres(c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := tracedDriver("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	return configure(db, c)
}

// NewSQLite opens an SQLite database file (or ":memory:") through the modernc driver.
// SQLite serializes writers, so the pool is capped at a single connection.
func NewSQLite(c config.DatabaseConfig) (*sql.DB, error) {
	if c.SQLitePath == "" {
		return nil, fmt.Errorf("invalid database config: sqlite path is required")
	}

	driverName, err := tracedDriver("sqlite", otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen(driverName, BuildSQLiteDSN(c.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	// A single long-lived connection keeps ":memory:" databases alive.
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	c.ConnMaxLifetimeSec = 0
	return configure(db, c)
}

// BuildSQLiteDSN enables foreign keys and a busy timeout on the given database file.
func BuildSQLiteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

const pingTimeout = 5 * time.Second

// configure applies the non-zero pool limits from c and fails unless the database answers a ping.
func configure(db *sql.DB, c config.DatabaseConfig) (*sql.DB, error) {
	if n := c.MaxOpenConns; n > 0 {
		db.SetMaxOpenConns(n)
	}
	if n := c.MaxIdleConns; n > 0 {
		db.SetMaxIdleConns(n)
	}
	if sec := c.ConnMaxLifetimeSec; sec > 0 {
		db.SetConnMaxLifetime(time.Duration(sec) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
