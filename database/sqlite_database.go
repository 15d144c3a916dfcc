package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements DBInterface for SQLite
type SQLiteDB struct {
	sqlStore
}

// SetupSQLiteDatabase initializes SQLite database with migrations
func SetupSQLiteDatabase(dbPath string) (*SQLiteDB, error) {
	// Create databases directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps PRAGMAs and writes on the same handle
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA cache_size = -64000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	if err := runMigrations(driver, "sqlite", "sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDB{sqlStore{db: db, placeholder: questionMark}}, nil
}

// Type names the backend
func (s *SQLiteDB) Type() string { return "sqlite" }
