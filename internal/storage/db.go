// Package storage persists employees and their metric snapshots with gorm.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/logging"
)

// Dialect picks a gorm dialector from a database URL.
// Supported forms: postgres://..., postgresql://..., sqlite://<path>, file:<path>?<params>.
func Dialect(rawURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return postgres.Open(rawURL), nil
	case strings.HasPrefix(rawURL, "sqlite://"):
		path := strings.TrimPrefix(rawURL, "sqlite://")
		if path == "" {
			return nil, errors.New("sqlite url has no path")
		}
		return sqlite.Open(SQLiteDSN(path)), nil
	case strings.HasPrefix(rawURL, "file:"):
		return sqlite.Open(SQLiteDSN(rawURL)), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", rawURL)
	}
}

// sqlitePragmas are applied by the driver to every new connection.
var sqlitePragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

// SQLiteDSN appends the connection pragmas to a sqlite path or file: URI.
func SQLiteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, pragma := range sqlitePragmas {
		dsn += sep + "_pragma=" + pragma
		sep = "&"
	}
	return dsn
}

// Open connects to the database and creates missing tables.
func Open(rawURL string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(rawURL)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logging.NewGormLogger(log),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// SQLite allows a single writer; serialise through one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)

		var foreignKeys int
		if err := db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error; err != nil {
			return nil, fmt.Errorf("failed to read sqlite pragmas: %w", err)
		}
		if foreignKeys != 1 {
			log.Warn("sqlite foreign keys are disabled; snapshots of deleted employees will not be rejected")
		}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or extends the employees and metrics tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Employee{}, &domain.Metric{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// isDuplicateKeyErr reports unique constraint violations across the supported drivers.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// PostgreSQL 23505, SQLite 2067.
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
