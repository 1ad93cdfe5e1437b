package kvlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB is a shared handle to an embedded SQLite database. Any number of
// Stores may bind to one handle concurrently; the handle owns the
// connection pool and must be closed by the caller when the last Store
// is done with it.
type DB struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - a single pooled connection, since SQLite allows one writer
//
// This function is idempotent - safe to call multiple times, including
// from independent processes bound to the same file.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON", // Prefix matching is literal
	}
	if err := applyPragmas(db, pragmas); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// OpenMemory opens a fresh in-memory database.
//
// The database uses a uniquely named shared-cache URI, so every
// connection in the pool (and therefore every Store bound to this
// handle) sees the same table. Two handles returned by separate
// OpenMemory calls are independent databases. Contents are lost on
// Close.
func OpenMemory() (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON", // Prefix matching is literal
	}
	if err := applyPragmas(db, pragmas); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
// Should be called when no Store references the handle anymore.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQL returns the underlying sql.DB for direct queries.
// Use with caution - prefer Store methods when available.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// querier abstracts the read surface shared by sql.DB and sql.Tx, so
// compound operations can run their reads inside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
