package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itzrizvi/yooda-hostel-server/internal/config"
)

const connectTimeout = 10 * time.Second

// Open connects to the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StorageDriver {
	case config.DriverMongo:
		store, err := OpenMongo(ctx, cfg.MongoConnectionURI(), cfg.DBName)
		if err != nil {
			return nil, err
		}
		log.Printf("service=database msg=%q driver=%s db=%s", "connected", cfg.StorageDriver, cfg.DBName)
		return store, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewGormStore(db)
		if err != nil {
			closeGorm(db)
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			closeGorm(db)
			return nil, fmt.Errorf("%s ping: %w", cfg.StorageDriver, err)
		}
		log.Printf("service=database msg=%q driver=%s", "connected", cfg.StorageDriver)
		return store, nil

	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.StorageDriver)
	}
}

// OpenGorm opens the relational backend: postgres from the DSN parts in cfg,
// or a sqlite file.
func OpenGorm(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	case config.DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		return nil, fmt.Errorf("database: %q is not a gorm driver", cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if cfg.StorageDriver == config.DriverSQLite {
		// sqlite allows one writer; a single connection also keeps
		// in-memory databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
