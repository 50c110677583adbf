package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chrononews-attachments/internal/config"
	"chrononews-attachments/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Driver     string
	DSN        string
	SQLitePath string
	LogLevel   logger.LogLevel
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver:     cfg.DBDriver,
		DSN:        cfg.DSN,
		SQLitePath: cfg.SQLitePath,
	}
}

func Connect(opts Options, appLogger *slog.Logger) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Silent
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case config.DBDriverSQLite:
		if dir := filepath.Dir(opts.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("gagal membuat direktori sqlite: %w", err)
			}
		}
		dialector = sqlite.Open(opts.SQLitePath)
	case config.DBDriverPostgres, "":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("driver database tidak dikenal: %s", opts.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("gagal terhubung ke database: %w", err)
	}

	if opts.Driver == config.DBDriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gagal mendapatkan instance database: %w", err)
		}
		// sqlite hanya mendukung satu writer
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	appLogger.With(slog.String("component", "database")).Info("Koneksi database berhasil.", "driver", dialector.Name())
	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.FileMeta{}, &model.FailedFile{}); err != nil {
		return fmt.Errorf("migrasi database gagal: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gagal mendapatkan instance database: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gagal mendapatkan instance database: %w", err)
	}
	return sqlDB.Close()
}
