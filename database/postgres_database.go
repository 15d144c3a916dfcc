package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

// PostgresDB implements DBInterface for PostgreSQL
type PostgresDB struct {
	sqlStore
}

// SetupPostgresDatabase connects to PostgreSQL and runs migrations
func SetupPostgresDatabase(connString string) (*PostgresDB, error) {
	if connString == "" {
		return nil, fmt.Errorf("no PostgreSQL connection string configured")
	}
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	if err := runMigrations(driver, "postgres", "postgres"); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresDB{sqlStore{db: db, placeholder: dollar}}, nil
}

// Type names the backend
func (p *PostgresDB) Type() string { return "postgres" }

// EphemeralPostgresDB is a PostgresDB backed by a throwaway embedded server
type EphemeralPostgresDB struct {
	*PostgresDB
	server  *embeddedpostgres.EmbeddedPostgres
	runtime string
}

// ephemeralPort is the port the embedded server listens on
const ephemeralPort = 5433

// SetupEphemeralPostgresDatabase starts an embedded PostgreSQL that is destroyed on Close
func SetupEphemeralPostgresDatabase() (*EphemeralPostgresDB, error) {
	runtime, err := os.MkdirTemp("", "aexpy-postgres-")
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	server := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(ephemeralPort).
		Database("aexpy").
		RuntimePath(filepath.Join(runtime, "runtime")).
		DataPath(filepath.Join(runtime, "data")))
	Logger.Info("Starting embedded PostgreSQL", "port", ephemeralPort, "runtime", runtime)
	if err := server.Start(); err != nil {
		os.RemoveAll(runtime)
		return nil, fmt.Errorf("failed to start embedded PostgreSQL: %w", err)
	}

	connString := fmt.Sprintf("host=localhost port=%d user=postgres password=postgres dbname=aexpy sslmode=disable", ephemeralPort)
	db, err := SetupPostgresDatabase(connString)
	if err != nil {
		server.Stop()
		os.RemoveAll(runtime)
		return nil, err
	}
	return &EphemeralPostgresDB{PostgresDB: db, server: server, runtime: runtime}, nil
}

// Close closes the connection, stops the server and removes its files
func (e *EphemeralPostgresDB) Close() error {
	closeErr := e.PostgresDB.Close()
	if err := e.server.Stop(); err != nil {
		Logger.Error("Failed to stop embedded PostgreSQL", "error", err)
		return err
	}
	if err := os.RemoveAll(e.runtime); err != nil {
		Logger.Warn("Failed to remove embedded PostgreSQL files", "path", e.runtime, "error", err)
	}
	return closeErr
}
