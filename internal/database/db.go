package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-file-manager/database/migrations"
	"go-file-manager/internal/config"
)

var DB *gorm.DB

// Initialize opens the configured Postgres database and applies the
// schema migrations.
func Initialize(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return err
	}
	return migrations.Migrate(DB)
}

func GetDB() *gorm.DB {
	return DB
}
