package db

import (
	"fmt"
	"time"

	"github.com/notblessy/mealplan-admin/model"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgres opens a migrated gorm connection whose SQL logging goes through logrus
func NewPostgres(dsn string) (*gorm.DB, error) {
	return open(postgres.Open(dsn), Migrate)
}

// open connects through dialector and runs migrate, closing the connection
// again when migration fails
func open(dialector gorm.Dialector, migrate func(*gorm.DB) error) (*gorm.DB, error) {
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(logrus.GetLevel()),
			IgnoreRecordNotFoundError: true,
		},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := migrate(conn); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logrus.Warnf("Could not close database after failed migration: %v", closeErr)
		}
		return nil, err
	}

	return conn, nil
}

// Migrate creates or updates the schema
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&model.Plan{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
