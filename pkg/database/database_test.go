package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLite {
	t.Helper()
	db, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countAccounts(t *testing.T, db *SQLite) int {
	t.Helper()
	var n int
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

const insertAccount = `INSERT INTO accounts (id, email, username, first_name, last_name, password_hash, created_at, updated_at)
VALUES (?, ?, ?, 'Ann', 'Lee', 'h', 0, 0)`

func TestNewSQLite_CreatesSchema(t *testing.T) {
	db := openMemory(t)

	for _, table := range []string{"accounts", "sessions", "progress", "client_storage"} {
		var name string
		err := db.DB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}

	require.NoError(t, db.Ping(context.Background()))
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		dsn      string
		expected string
	}{
		{":memory:", ":memory:?_pragma=foreign_keys(1)"},
		{"exam.db", "exam.db?_pragma=foreign_keys(1)"},
		{"file:exam.db?_pragma=busy_timeout(5000)", "file:exam.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"file:exam.db?_pragma=foreign_keys(1)", "file:exam.db?_pragma=foreign_keys(1)"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, withForeignKeys(tt.dsn))
	}
}

func TestNewSQLite_ForeignKeysOnEveryConnection(t *testing.T) {
	db, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "exam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// No idle connections: every statement below runs on a fresh connection
	db.DB.SetMaxIdleConns(0)

	for range 2 {
		var enabled int
		require.NoError(t, db.DB.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
		require.Equal(t, 1, enabled)
	}

	_, err = db.DB.Exec(`INSERT INTO sessions (token_hash, account_id, created_at, expires_at, remember_me, is_active)
VALUES ('h', 'missing', 0, 1, 0, 1)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Migrate(db.DB))
}

func TestAccounts_UniqueEmail(t *testing.T) {
	db := openMemory(t)

	_, err := db.DB.Exec(insertAccount, "1", "a@x.com", "auser")
	require.NoError(t, err)

	_, err = db.DB.Exec(insertAccount, "2", "a@x.com", "other")
	require.Error(t, err)
	require.Contains(t, err.Error(), "UNIQUE")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := openMemory(t)

	err := WithTx(context.Background(), db.DB, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, insertAccount, "1", "a@x.com", "auser")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countAccounts(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openMemory(t)

	err := WithTx(context.Background(), db.DB, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, insertAccount, "1", "a@x.com", "auser")
		require.NoError(t, err)
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 0, countAccounts(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openMemory(t)

	require.PanicsWithValue(t, "kaboom", func() {
		_ = WithTx(context.Background(), db.DB, func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, insertAccount, "1", "a@x.com", "auser")
			require.NoError(t, err)
			panic("kaboom")
		})
	})
	require.Equal(t, 0, countAccounts(t, db))
}

func TestWithTx_BeginFailsOnClosedDB(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db.DB, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
