package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite represents the embedded database file backing all local stores
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database at dsn and applies pending migrations.
// Use ":memory:" for a throwaway database. Foreign keys are enforced on
// every connection the pool opens.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; also keeps ":memory:" on a single shared connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{DB: db}, nil
}

// withForeignKeys adds the foreign_keys pragma to dsn unless it already sets it.
// The driver runs DSN pragmas on each new connection.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.DB.Close()
}

// Ping checks if the database is available
func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
