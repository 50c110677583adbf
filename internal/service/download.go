package service

import (
	"context"
	"io"
	"log/slog"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/apperror"
	"chrononews-attachments/internal/model"
	"chrononews-attachments/internal/repository"
)

type Download struct {
	Content io.ReadCloser
	Meta    model.FileMeta
}

type DownloadService struct {
	store   repository.MetadataStore
	storage adapter.Storage
	logger  *slog.Logger
}

func NewDownloadService(store repository.MetadataStore, storage adapter.Storage, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		store:   store,
		storage: storage,
		logger:  logger.With(slog.String("component", "download")),
	}
}

// Download opens the stored file. The caller must close Content.
func (s *DownloadService) Download(ctx context.Context, fileID int32) (*Download, error) {
	meta, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.FileNotFound(fileID, err)
		}
		return nil, apperror.MetadataFailed("gagal membaca metadata file", err)
	}

	content, err := s.storage.Open(ctx, meta.Path)
	if err != nil {
		s.logger.Warn("File ada di metadata tetapi tidak dapat dibuka", "file_id", fileID, "path", meta.Path, "error", err)
		return nil, apperror.FilePathInvalid(meta.Path, err)
	}

	return &Download{Content: content, Meta: *meta}, nil
}
