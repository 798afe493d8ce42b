package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ketan-bobby/skillpulse/internal/config"
	"github.com/ketan-bobby/skillpulse/internal/models"
)

// InitDatabase opens the Postgres connection, runs migrations and installs
// the partial indexes the repositories rely on.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Test{},
		&models.Question{},
		&models.Assignment{},
		&models.TestSession{},
		&models.TestResult{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// At most one in-progress session per (person, test). AutoMigrate cannot
	// express a partial index, so the guard the session repository depends on
	// is installed here.
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON test_sessions (person_id, test_id)
		WHERE status = 'in_progress'`).Error
	if err != nil {
		return fmt.Errorf("failed to create active session index: %w", err)
	}

	return nil
}
