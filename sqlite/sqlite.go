// Package sqlite provides SQLite-backed storage for filing extraction records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait up to 5 seconds on lock contention instead of failing with
	// "database is locked".
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// A batch run writes one record per filing; WAL keeps those inserts
	// fast and lets readers query while a run is in flight. WAL mode is
	// not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS filings (
			accession TEXT PRIMARY KEY,
			cik TEXT NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			form_type TEXT NOT NULL DEFAULT '',
			filed_date TEXT NOT NULL DEFAULT '',
			period_of_report TEXT NOT NULL DEFAULT '',
			primary_document TEXT NOT NULL DEFAULT '',
			schema_version TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL DEFAULT '',
			extracted_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sections (
			accession TEXT NOT NULL REFERENCES filings(accession) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			heading TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (accession, position)
		);

		CREATE TABLE IF NOT EXISTS segments (
			accession TEXT NOT NULL,
			section_position INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			word_count INTEGER NOT NULL DEFAULT 0,
			char_count INTEGER NOT NULL DEFAULT 0,
			parent_subsection TEXT NOT NULL DEFAULT '',
			ancestors TEXT NOT NULL DEFAULT '[]',
			is_cross_ref INTEGER NOT NULL DEFAULT 0,
			cross_ref_target TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (accession, section_position, idx),
			FOREIGN KEY (accession, section_position) REFERENCES sections(accession, position) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_filings_cik ON filings(cik);
		CREATE INDEX IF NOT EXISTS idx_filings_form_type ON filings(form_type);
		CREATE INDEX IF NOT EXISTS idx_sections_item_id ON sections(item_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
