package service

import (
	"context"
	"fmt"
	"log/slog"

	"chrononews-attachments/internal/apperror"
	"chrononews-attachments/internal/model"
	"chrononews-attachments/internal/repository"
	"chrononews-attachments/internal/tracker"
)

type DeletionCoordinator struct {
	store   repository.MetadataStore
	writer  *FileWriter
	tracker tracker.FailureTracker
	locks   *PostLocker
	logger  *slog.Logger
}

func NewDeletionCoordinator(store repository.MetadataStore, writer *FileWriter, failures tracker.FailureTracker, locks *PostLocker, logger *slog.Logger) *DeletionCoordinator {
	return &DeletionCoordinator{
		store:   store,
		writer:  writer,
		tracker: failures,
		locks:   locks,
		logger:  logger.With(slog.String("component", "deletion")),
	}
}

// DeleteAll removes every attachment of a post. Rows go first; a file that
// cannot be removed afterwards is handed to the tracker instead of failing
// the call. Only metadata errors are returned.
func (d *DeletionCoordinator) DeleteAll(ctx context.Context, postID int32) error {
	unlock := d.locks.Lock(postID)
	defer unlock()

	metas, err := d.store.FindByPostID(ctx, postID)
	if err != nil {
		return apperror.MetadataFailed(fmt.Sprintf("gagal membaca lampiran post %d", postID), err)
	}
	if len(metas) == 0 {
		return nil
	}

	var removed, tracked int
	for _, meta := range metas {
		if err := d.store.Delete(ctx, meta.ID); err != nil {
			return apperror.MetadataFailed(fmt.Sprintf("gagal menghapus file meta %d", meta.ID), err)
		}

		if err := d.writer.Delete(ctx, meta.Path); err != nil {
			physicalDeletesTotal.WithLabelValues("failed").Inc()
			d.trackFailure(ctx, meta, err)
			tracked++
			continue
		}
		physicalDeletesTotal.WithLabelValues("ok").Inc()
		removed++
	}

	d.logger.Info("Lampiran post dihapus", "post_id", postID, "dihapus", removed, "dilacak", tracked)
	return nil
}

func (d *DeletionCoordinator) trackFailure(ctx context.Context, meta model.FileMeta, cause error) {
	key := tracker.Key{StoredName: meta.StoredName, Path: meta.Path}
	d.logger.Warn("Gagal menghapus file fisik, dicatat untuk dicoba lagi", "file_id", meta.ID, "path", meta.Path, "error", cause)

	if err := d.tracker.Record(context.WithoutCancel(ctx), key); err != nil {
		trackerRecordFailuresTotal.Inc()
		d.logger.Error("KRITIS: Gagal mencatat file ke tracker, file tidak terlacak", "entry", key.String(), "error", err)
	}
}
