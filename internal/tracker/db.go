package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"chrononews-attachments/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBTracker stores entries in the failed_file table; the unique key gives it
// set semantics.
type DBTracker struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDBTracker(db *gorm.DB, logger *slog.Logger) *DBTracker {
	return &DBTracker{
		db:     db,
		logger: logger.With(slog.String("component", "tracker")),
	}
}

func (t *DBTracker) Record(ctx context.Context, key Key) error {
	entry := model.FailedFile{Key: key.String()}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "entry_key"}}, DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("gagal mencatat %s: %w", key, err)
	}
	return nil
}

func (t *DBTracker) ListAll(ctx context.Context) ([]Key, error) {
	var entries []model.FailedFile
	if err := t.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("gagal membaca failed_file: %w", err)
	}

	keys := make([]Key, 0, len(entries))
	for _, entry := range entries {
		key, err := ParseKey(entry.Key)
		if err != nil {
			t.logger.Warn("Entri tracker rusak dilewati", "entry", entry.Key, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (t *DBTracker) Clear(ctx context.Context, key Key) error {
	err := t.db.WithContext(ctx).
		Where("entry_key = ?", key.String()).
		Delete(&model.FailedFile{}).Error
	if err != nil {
		return fmt.Errorf("gagal menghapus %s: %w", key, err)
	}
	return nil
}

func (t *DBTracker) Ping(ctx context.Context) error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
