package service

import (
	"context"

	"chrononews-attachments/internal/model"
	"chrononews-attachments/internal/workerpool"
)

// Attachments is the entry point used by the post lifecycle: upload and
// deletion requests run on the shared worker pool, downloads run inline.
type Attachments struct {
	pool     *workerpool.Pool
	upload   *UploadCoordinator
	deletion *DeletionCoordinator
	download *DownloadService
}

func NewAttachments(pool *workerpool.Pool, upload *UploadCoordinator, deletion *DeletionCoordinator, download *DownloadService) *Attachments {
	return &Attachments{
		pool:     pool,
		upload:   upload,
		deletion: deletion,
		download: download,
	}
}

func (a *Attachments) Store(ctx context.Context, postID int32, files []Payload) ([]model.FileMeta, error) {
	var metas []model.FileMeta
	err := a.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		metas, err = a.upload.Store(ctx, postID, files)
		return err
	})
	if err != nil {
		return nil, err
	}
	return metas, nil
}

func (a *Attachments) DeleteAll(ctx context.Context, postID int32) error {
	return a.pool.Do(ctx, func(ctx context.Context) error {
		return a.deletion.DeleteAll(ctx, postID)
	})
}

func (a *Attachments) Download(ctx context.Context, fileID int32) (*Download, error) {
	return a.download.Download(ctx, fileID)
}
