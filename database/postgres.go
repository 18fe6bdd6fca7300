package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyplan-backend/config"
	"studyplan-backend/models"
	"studyplan-backend/repository"
)

// ConnectPostgres opens the gorm connection and migrates the account tables,
// the activity feed and, when withPlans is set, the relational plan tables.
func ConnectPostgres(cfg *config.Config, log zerolog.Logger, withPlans bool) (*gorm.DB, error) {
	level := logger.Info
	if cfg.Env == config.EnvProd {
		level = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.Storage.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	tables := []any{
		&models.User{},
		&models.Activity{},
	}
	if withPlans {
		tables = append(tables, repository.GormPlanModels()...)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	log.Info().Int("tables", len(tables)).Msg("migrated postgres")

	return db, nil
}

func ClosePostgres(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
