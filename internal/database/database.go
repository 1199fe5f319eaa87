package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrUnsupportedDriver is returned when the database URL scheme is not recognized.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Database wraps a GORM connection and exposes context-scoped sessions.
type Database struct {
	db *gorm.DB
}

// NewDatabase opens a database connection from a URL.
// Supported schemes: "sqlite:///path/to.db" and "postgres://...".
func NewDatabase(ctx context.Context, url string) (Database, error) {
	return NewDatabaseWithConfig(ctx, url, &gorm.Config{
		Logger: newSlogGormLogger(),
	})
}

// NewDatabaseWithConfig opens a database connection with a custom GORM config.
func NewDatabaseWithConfig(ctx context.Context, url string, cfg *gorm.Config) (Database, error) {
	dialector, err := parseDialector(url)
	if err != nil {
		return Database{}, fmt.Errorf("parse database url: %w", err)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return Database{}, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, fmt.Errorf("get sql.DB: %w", err)
	}
	if db.Name() == "sqlite" {
		// SQLite serializes writes anyway, and an in-memory database is
		// scoped to a single connection.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Database{}, fmt.Errorf("ping database: %w", err)
	}

	return Database{db: db}, nil
}

func parseDialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		path := strings.TrimPrefix(url, "sqlite:///")
		return sqlite.Open(path), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

// Session returns a context-scoped *gorm.DB for running queries.
func (d Database) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// GORM returns the underlying *gorm.DB. Prefer Session for query work.
func (d Database) GORM() *gorm.DB {
	return d.db
}

// Close closes the underlying database connection.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// ConfigurePool sets connection pool limits on the underlying sql.DB.
func (d Database) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	return nil
}

// IsPostgres reports whether the connection uses the postgres driver.
func (d Database) IsPostgres() bool {
	return d.db.Name() == "postgres"
}

// IsSQLite reports whether the connection uses the sqlite driver.
func (d Database) IsSQLite() bool {
	return d.db.Name() == "sqlite"
}
