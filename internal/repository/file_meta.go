package repository

import (
	"context"
	"errors"
	"fmt"

	"chrononews-attachments/internal/model"

	"gorm.io/gorm"
)

var ErrRecordNotFound = gorm.ErrRecordNotFound

// MetadataStore is pure data access for FileMeta rows.
type MetadataStore interface {
	Create(ctx context.Context, meta *model.FileMeta) error
	FindByID(ctx context.Context, id int32) (*model.FileMeta, error)
	FindByPostID(ctx context.Context, postID int32) ([]model.FileMeta, error)
	Delete(ctx context.Context, id int32) error

	// Transaction runs fn against a store bound to a single database
	// transaction. Returning an error from fn rolls it back.
	Transaction(ctx context.Context, fn func(tx MetadataStore) error) error
}

type FileMetaRepository struct {
	db *gorm.DB
}

func NewFileMetaRepository(db *gorm.DB) *FileMetaRepository {
	return &FileMetaRepository{db: db}
}

func (r *FileMetaRepository) Create(ctx context.Context, meta *model.FileMeta) error {
	if meta.Persisted() {
		return fmt.Errorf("file meta %d sudah tersimpan", meta.ID)
	}
	if err := r.db.WithContext(ctx).Create(meta).Error; err != nil {
		return fmt.Errorf("gagal menyimpan file meta %s: %w", meta.StoredName, err)
	}
	return nil
}

func (r *FileMetaRepository) FindByID(ctx context.Context, id int32) (*model.FileMeta, error) {
	var meta model.FileMeta
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&meta).Error
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *FileMetaRepository) FindByPostID(ctx context.Context, postID int32) ([]model.FileMeta, error) {
	var metas []model.FileMeta
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&metas).Error
	return metas, err
}

func (r *FileMetaRepository) Delete(ctx context.Context, id int32) error {
	result := r.db.WithContext(ctx).Delete(&model.FileMeta{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("file meta %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (r *FileMetaRepository) Transaction(ctx context.Context, fn func(tx MetadataStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FileMetaRepository{db: tx})
	})
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
