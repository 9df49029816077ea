package db

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

type Config struct {
	Driver string
	Path   string
	DSN    string
}

// Open returns a connection pool for the configured engine. The caller owns
// the handle and passes it to the store; there is no package-level state.
func Open(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return openSQLite(cfg.Path)
	case DriverPostgres:
		conn, err := sqlx.Open(DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
	conn, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return conn, nil
}

// Migrate brings the schema up to date using the embedded migrations for
// the handle's driver.
func Migrate(conn *sqlx.DB) error {
	driverName := conn.DriverName()

	src, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("failed to load migrations for %s: %w", driverName, err)
	}

	var drv database.Driver
	switch driverName {
	case DriverSQLite:
		drv, err = migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
	case DriverPostgres:
		drv, err = migratepg.WithInstance(conn.DB, &migratepg.Config{})
	default:
		return fmt.Errorf("unsupported database driver: %s", driverName)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
