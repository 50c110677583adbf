package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidFileMeta = errors.New("file meta tidak valid")

type FileMeta struct {
	ID           int32     `gorm:"column:id;primaryKey;type:integer;autoIncrement;not null"`
	PostID       int32     `gorm:"column:post_id;not null;index"`
	OriginalName string    `gorm:"column:original_name;type:varchar(255);not null"`
	StoredName   string    `gorm:"column:stored_name;type:varchar(64);not null"`
	ContentType  string    `gorm:"column:content_type;type:varchar(255);not null"`
	Size         int64     `gorm:"column:size;not null"`
	Path         string    `gorm:"column:path;type:varchar(512);not null;uniqueIndex"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;not null"`
}

func (FileMeta) TableName() string {
	return "file_meta"
}

// NewFileMeta builds an unsaved FileMeta. A validation error here means the
// caller passed bad input and must not be retried.
func NewFileMeta(postID int32, originalName, storedName, contentType string, size int64, path string, uploadedAt time.Time) (*FileMeta, error) {
	var problems []string
	if postID <= 0 {
		problems = append(problems, "post_id kosong")
	}
	if strings.TrimSpace(originalName) == "" {
		problems = append(problems, "original_name kosong")
	}
	if strings.TrimSpace(storedName) == "" {
		problems = append(problems, "stored_name kosong")
	}
	if strings.TrimSpace(contentType) == "" {
		problems = append(problems, "content_type kosong")
	}
	if strings.TrimSpace(path) == "" {
		problems = append(problems, "path kosong")
	}
	if size < 0 {
		problems = append(problems, "size negatif")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileMeta, strings.Join(problems, ", "))
	}

	return &FileMeta{
		PostID:       postID,
		OriginalName: originalName,
		StoredName:   storedName,
		ContentType:  contentType,
		Size:         size,
		Path:         path,
		UploadedAt:   uploadedAt,
	}, nil
}

func (f *FileMeta) Persisted() bool {
	return f.ID != 0
}

type FailedFile struct {
	ID        int32  `gorm:"column:id;primaryKey;type:integer;autoIncrement;not null"`
	Key       string `gorm:"column:entry_key;type:varchar(768);not null;uniqueIndex"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:unixtime"`
}

func (FailedFile) TableName() string {
	return "failed_file"
}
