package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

//go:embed migrations
var migrationsFS embed.FS

// Snapshot records one fetch of the project index
type Snapshot struct {
	ID           int       `json:"-"`
	ULID         ulid.ULID `json:"id"`
	SourceURL    string    `json:"sourceURL"`
	FetchedAt    time.Time `json:"fetchedAt"`
	ProjectCount int       `json:"projectCount"`
}

// NewSnapshot creates a snapshot with a fresh ULID
func NewSnapshot(sourceURL string, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		ULID:      ulid.MustNew(ulid.Timestamp(fetchedAt), ulid.DefaultEntropy()),
		SourceURL: sourceURL,
		FetchedAt: fetchedAt.UTC(),
	}
}

// DBInterface defines the project index store, implemented for SQLite and PostgreSQL
type DBInterface interface {
	Close() error
	SaveSnapshot(snapshot *Snapshot, projects []string) error
	LatestSnapshot() (*Snapshot, error)
	GetProjects(limit int) ([]string, error)
	HasProject(name string) (bool, error)
	CountProjects() (int, error)
	Type() string
}

// sqlStore holds the queries shared by both backends, differing only in placeholders
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// bind rewrites ? placeholders for the backend
func (s *sqlStore) bind(query string) string {
	if s.placeholder == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores a snapshot and replaces the project set with projects
func (s *sqlStore) SaveSnapshot(snapshot *Snapshot, projects []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot.ProjectCount = len(projects)
	err = tx.QueryRow(s.bind(`
		INSERT INTO index_snapshots (ulid, source_url, fetched_at, project_count)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), snapshot.ULID.String(), snapshot.SourceURL, snapshot.FetchedAt.UnixMilli(), snapshot.ProjectCount).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}
	stmt, err := tx.Prepare(s.bind(`INSERT INTO projects (name, snapshot_ulid) VALUES (?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare project insert: %w", err)
	}
	defer stmt.Close()
	for _, name := range projects {
		if _, err := stmt.Exec(name, snapshot.ULID.String()); err != nil {
			return fmt.Errorf("failed to insert project %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	Logger.Info("Index snapshot saved", "snapshot", snapshot.ULID.String(), "projects", snapshot.ProjectCount)
	return nil
}

// LatestSnapshot returns the most recent snapshot, nil when none exists
func (s *sqlStore) LatestSnapshot() (*Snapshot, error) {
	query := `SELECT id, ulid, source_url, fetched_at, project_count
	          FROM index_snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`

	snapshot := &Snapshot{}
	var ulidStr string
	var fetchedAt int64
	err := s.db.QueryRow(query).Scan(&snapshot.ID, &ulidStr, &snapshot.SourceURL, &fetchedAt, &snapshot.ProjectCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(ulidStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ULID: %w", err)
	}
	snapshot.ULID = id
	snapshot.FetchedAt = time.UnixMilli(fetchedAt).UTC()
	return snapshot, nil
}

// GetProjects returns project names in name order, all of them when limit <= 0
func (s *sqlStore) GetProjects(limit int) ([]string, error) {
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(s.bind(`SELECT name FROM projects ORDER BY name LIMIT ?`), limit)
	} else {
		rows, err = s.db.Query(`SELECT name FROM projects ORDER BY name`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		projects = append(projects, name)
	}
	return projects, rows.Err()
}

// HasProject reports whether name is in the current project set
func (s *sqlStore) HasProject(name string) (bool, error) {
	var count int
	err := s.db.QueryRow(s.bind(`SELECT COUNT(*) FROM projects WHERE name = ?`), name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountProjects returns the size of the current project set
func (s *sqlStore) CountProjects() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// runMigrations applies the embedded migrations under migrations/<dir>
func runMigrations(driver migratedb.Driver, dir, databaseName string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, databaseName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	Logger.Info("Database migrations completed successfully", "database", databaseName)
	return nil
}

// SetupDatabase opens the configured backend
func SetupDatabase(databaseType, connString, sqlitePath string) (DBInterface, error) {
	switch strings.ToLower(databaseType) {
	case "postgres", "postgresql":
		Logger.Info("Opening PostgreSQL database")
		db, err := SetupPostgresDatabase(connString)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "", "sqlite", "sqlite3":
		Logger.Info("Opening SQLite database", "path", sqlitePath)
		db, err := SetupSQLiteDatabase(sqlitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type %q", databaseType)
	}
}
