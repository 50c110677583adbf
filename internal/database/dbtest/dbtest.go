// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"chrononews-attachments/internal/config"
	"chrononews-attachments/internal/database"

	"gorm.io/gorm"
)

func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := database.Connect(database.Options{
		Driver:     config.DBDriverSQLite,
		SQLitePath: filepath.Join(tb.TempDir(), "attachments.db"),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		tb.Fatalf("gagal membuka database tes: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(context.Background(), db); err != nil {
		tb.Fatalf("gagal migrasi database tes: %v", err)
	}
	return db
}
