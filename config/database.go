package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDatabase opens the Postgres connection for the configured DSN.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		// Surface driver errors as gorm sentinels (duplicate key etc.)
		// so the boundary classifier can match them.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
