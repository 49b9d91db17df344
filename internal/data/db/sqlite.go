package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/cart-backend/internal/platform/logger"
)

// NewSQLiteService opens a SQLite database for local runs. An empty path
// yields a private in-memory database.
func NewSQLiteService(logg *logger.Logger, path string) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	db, err := OpenSQLite(path, gormConfig())
	if err != nil {
		return nil, err
	}
	serviceLog.Info("Opened SQLite database", "path", path)
	return &Service{db: db, log: serviceLog, driver: "sqlite"}, nil
}

// OpenSQLite enables foreign keys and pins the pool to one connection:
// SQLite serialises writers anyway, and an in-memory database is private
// to the connection that created it.
func OpenSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ":memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := gorm.Open(sqlite.Open(path+sep+"_foreign_keys=on&_busy_timeout=5000"), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
