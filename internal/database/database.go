package database

import (
	"fmt"
	"strings"

	"surya-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open initializes the database connection selected by databaseURL and creates
// the tables if they are missing.
//
// postgres://, postgresql:// and key=value DSNs use the postgres driver;
// sqlite:///path (or a bare file path) uses sqlite.
func Open(databaseURL string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("dialect", db.Dialector.Name()))
	return db, nil
}

// Migrate creates or updates the tables for Patient, Order and TestResult.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Patient{}, &models.Order{}, &models.TestResult{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("empty database url")
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"),
		strings.Contains(databaseURL, "host="):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		// sqlite:///db.sqlite names a relative file, sqlite:////abs/db.sqlite an absolute one.
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return sqlite.Open(path), nil
	case strings.Contains(databaseURL, "://"):
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	default:
		return sqlite.Open(databaseURL), nil
	}
}
