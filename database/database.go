package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rasa-cafe/config"
	"rasa-cafe/model"
)

// DefaultFloorName is the floor every fresh installation starts with.
const DefaultFloorName = "نیم طبقه"

// Open connects to the configured dialect and checks the connection.
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time, and in-memory databases live per connection
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Floor{},
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderSequence{},
		&model.FeatureFlag{},
		&model.Report{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// EnsureDefaults inserts the rows the application expects to exist. Existing
// rows are left untouched.
func EnsureDefaults(db *gorm.DB) error {
	flag := model.FeatureFlag{Feature: model.FeatureCreditSystem}
	if err := db.Where(model.FeatureFlag{Feature: model.FeatureCreditSystem}).
		FirstOrCreate(&flag).Error; err != nil {
		return fmt.Errorf("ensure credit system flag: %w", err)
	}

	var floors int64
	if err := db.Model(&model.Floor{}).Count(&floors).Error; err != nil {
		return fmt.Errorf("count floors: %w", err)
	}
	if floors == 0 {
		if err := db.Create(&model.Floor{Name: DefaultFloorName}).Error; err != nil {
			return fmt.Errorf("create default floor: %w", err)
		}
	}
	return nil
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
