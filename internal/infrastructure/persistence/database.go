// Package persistence stores report run records in a local SQLite
// database through GORM. The database is an audit trail, not a source of
// truth: every sheet is rebuilt from the export data on each run.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ffcsa/reports/internal/infrastructure/logger"
	"github.com/ffcsa/reports/internal/infrastructure/persistence/models"
)

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if needed) the SQLite database at path and
// runs migrations. Query logging is off; tests and tools use this.
func NewDatabase(path string) (*Database, error) {
	return open(path, zap.NewNop(), gormlogger.Silent)
}

// NewDatabaseWithLogger opens the database with queries routed through the
// service logger at the given GORM verbosity.
func NewDatabaseWithLogger(path string, log *zap.Logger, level gormlogger.LogLevel) (*Database, error) {
	return open(path, log, level)
}

func open(path string, log *zap.Logger, level gormlogger.LogLevel) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; serialize access instead of failing on
	// SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.RunModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
