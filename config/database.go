package config

import (
	"fmt"
	"strings"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the local database file, creating it on first run,
// or a postgres server when DatabaseURL is a postgres:// URL
func ConnectDatabase(cfg *Config) error {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(cfg)),
	}

	var dialector gorm.Dialector
	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// single user, single connection
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	DB = db
	log.Info().Bool("postgres", cfg.IsPostgres()).Msg("database connection established")
	return nil
}

// Migrate creates any missing tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}

// gormLogLevel maps the app log level onto SQL logging. Development builds always
// report slow queries and SQL errors.
func gormLogLevel(cfg *Config) logger.LogLevel {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "trace":
		return logger.Info
	case "warn", "warning":
		return logger.Warn
	case "error":
		return logger.Error
	}
	if cfg.IsDevelopment() {
		return logger.Warn
	}
	return logger.Silent
}
