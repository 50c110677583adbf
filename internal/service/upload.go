package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chrononews-attachments/internal/apperror"
	"chrononews-attachments/internal/model"
	"chrononews-attachments/internal/repository"
)

const defaultContentType = "application/octet-stream"

type UploadCoordinator struct {
	store  repository.MetadataStore
	writer *FileWriter
	locks  *PostLocker
	now    func() time.Time
	logger *slog.Logger
}

func NewUploadCoordinator(store repository.MetadataStore, writer *FileWriter, locks *PostLocker, logger *slog.Logger) *UploadCoordinator {
	return &UploadCoordinator{
		store:  store,
		writer: writer,
		locks:  locks,
		now:    time.Now,
		logger: logger.With(slog.String("component", "upload")),
	}
}

// Store writes every non-empty payload and persists one FileMeta per file in
// a single metadata transaction. On any failure the files already written by
// this call are removed again and no row survives.
func (u *UploadCoordinator) Store(ctx context.Context, postID int32, files []Payload) ([]model.FileMeta, error) {
	result := make([]model.FileMeta, 0, len(files))
	if !hasContent(files) {
		return result, nil
	}

	unlock := u.locks.Lock(postID)
	defer unlock()

	var written []string
	err := u.store.Transaction(ctx, func(tx repository.MetadataStore) error {
		for _, file := range files {
			if file.Empty() {
				u.logger.Debug("File kosong dilewati", "post_id", postID, "original_name", file.OriginalName)
				continue
			}

			contentType := file.ContentType
			if contentType == "" {
				contentType = defaultContentType
			}

			uploadedAt := u.now()
			storedName, path := u.writer.Resolve(file.OriginalName, uploadedAt)

			meta, err := model.NewFileMeta(postID, file.OriginalName, storedName, contentType, file.Size, path, uploadedAt)
			if err != nil {
				return err
			}

			size, err := u.writer.Write(ctx, path, file)
			if err != nil {
				return apperror.UploadFailed(fmt.Errorf("gagal menulis %s: %w", file.OriginalName, err))
			}
			written = append(written, path)
			meta.Size = size

			if err := tx.Create(ctx, meta); err != nil {
				return apperror.MetadataFailed("gagal menyimpan metadata lampiran", err)
			}
			result = append(result, *meta)
		}
		return nil
	})
	if err != nil {
		u.rollbackFiles(ctx, postID, written)
		return nil, u.classify(err)
	}

	uploadedFilesTotal.Add(float64(len(result)))
	u.logger.Info("Lampiran tersimpan", "post_id", postID, "jumlah", len(result))
	return result, nil
}

func (u *UploadCoordinator) rollbackFiles(ctx context.Context, postID int32, paths []string) {
	if len(paths) == 0 {
		return
	}
	uploadRollbacksTotal.Inc()

	cleanupCtx := context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := u.writer.Delete(cleanupCtx, path); err != nil {
			u.logger.Error("Rollback: gagal menghapus file yang sudah ditulis", "post_id", postID, "path", path, "error", err)
			continue
		}
		u.logger.Debug("Rollback: file dihapus", "post_id", postID, "path", path)
	}
	u.logger.Warn("Batch upload dibatalkan", "post_id", postID, "file_ditulis", len(paths))
}

func (u *UploadCoordinator) classify(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) || errors.Is(err, model.ErrInvalidFileMeta) {
		return err
	}
	// commit gagal atau error lain dari lapisan transaksi
	return apperror.UploadFailed(err)
}

func hasContent(files []Payload) bool {
	for _, f := range files {
		if !f.Empty() {
			return true
		}
	}
	return false
}
