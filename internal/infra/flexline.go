package infra

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewFlexDatabase opens a read-only style connection to the flex master
// store. Automatic ping is disabled so the backend still boots when the
// master is down; catalog lookups then fail per request and the resolver
// degrades to an empty catalog instead of taking the whole service with it.
func NewFlexDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Small pool: the master is shared with other club systems.
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	return db, nil
}
