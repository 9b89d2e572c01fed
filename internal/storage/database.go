package storage

import (
	"fmt"

	"github.com/estatecrm/api/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection described by cfg. Credentials come
// from the environment when set, otherwise from AWS Secrets Manager.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	username, password, err := retrieveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	var sslMode string
	if cfg.DBSSLDisabled {
		sslMode = " sslmode=disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.DBHost, username, password, cfg.DBName, cfg.DBPort, sslMode)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
}
