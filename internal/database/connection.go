package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. The engine is
// selected with DB_TYPE: "postgres" (default, DSN from DATABASE_URL)
// or "sqlite" (file path from DATABASE_PATH).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "postgres"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "sqlite":
		dbPath := os.Getenv("DATABASE_PATH")
		if dbPath == "" {
			dbPath = filepath.Join("data", "studybot.db")
		}
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(10)
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// isPostgres reports whether the active connection talks to PostgreSQL.
func isPostgres() bool {
	return DB.DriverName() == "postgres"
}

// WithTx runs fn inside a transaction, committing on nil and rolling
// back on error. Every persisted mutation of the scheduling core goes
// through here so a failed update leaves prior state unchanged.
//
// On postgres the transaction runs at REPEATABLE READ: a row lock
// cannot anchor two writers racing to create the same row, so the
// isolation level turns that race into a serialization failure
// (40001), which is transient and retried. SQLite serializes through
// its single connection and needs neither.
func WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var opts *sql.TxOptions
	if isPostgres() {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	}
	tx, err := DB.BeginTxx(ctx, opts)
	if err != nil {
		return wrapTransient("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapTransient("commit transaction", err)
	}
	return nil
}
