package database

import (
	"fmt"
	"os"

	applog "estatelist/backend/pkg/log"

	"github.com/golang-migrate/migrate/v4"
	postgresdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB initializes the database connection.
func ConnectDB(dsn string) error {
	var err error
	logLevel := logger.Silent
	if os.Getenv("APP_ENV") == "development" {
		logLevel = logger.Info
	}

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applog.L.Info("Database connection established")
	return nil
}

// MigrateDB applies SQL migrations with golang-migrate against the current
// GORM connection. The migrations directory is resolved relative to the
// working directory of the binary.
func MigrateDB() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized, call ConnectDB first")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	driver, err := postgresdriver.WithInstance(sqlDB, &postgresdriver.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver for migrate: %w", err)
	}

	sourceURL := "file://internal/database/migrations"
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		// Fallback path when the binary is run from cmd/server.
		sourceURL = "file://../internal/database/migrations"
		m, err = migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
		if err != nil {
			return fmt.Errorf("failed to initialize migrate with source %q: %w", sourceURL, err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && verr != migrate.ErrNilVersion {
		applog.L.Warn("Could not read migration version", zap.Error(verr))
	} else {
		applog.L.Info("Database migrations applied",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))
	}
	return nil
}

// GetDB returns the current database instance.
func GetDB() *gorm.DB {
	return DB
}

// SetDB swaps the database instance. Used by tests to inject a mock.
func SetDB(db *gorm.DB) {
	DB = db
}
