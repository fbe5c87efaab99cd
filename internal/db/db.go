package db

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"blog/internal/config"
	"blog/internal/model"
)

// Open connects to the store selected by cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return NewMySQL(cfg.MySQLDSN)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         NewLogger(),
		TranslateError: true,
	}
}

// Migrate creates or updates the users, posts and comments tables. With reset
// set, the tables are dropped first.
func Migrate(db *gorm.DB, reset bool) error {
	models := model.All()
	if reset {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				log.Warn().Err(err).Msg("drop table failed (may not exist)")
			}
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
