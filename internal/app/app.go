// Package app wires the attachment lifecycle together: metadata database,
// file storage, failure tracker, cleanup pipeline, schedules and the ops
// server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/config"
	"chrononews-attachments/internal/database"
	"chrononews-attachments/internal/repository"
	"chrononews-attachments/internal/scheduler"
	"chrononews-attachments/internal/server"
	"chrononews-attachments/internal/service"
	"chrononews-attachments/internal/tracker"
	"chrononews-attachments/internal/workerpool"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	// Attachments is what the post lifecycle calls into.
	Attachments *service.Attachments

	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	redis     *redis.Client
	pool      *workerpool.Pool
	channel   *service.CleanupChannel
	consumer  *service.CleanupConsumer
	sweeper   *service.Sweeper
	janitor   *service.TrackerJanitor
	scheduler *scheduler.Scheduler
	ops       *server.Server
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	db, err := database.Connect(database.OptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := database.Migrate(ctx, db); err != nil {
		a.closeResources()
		return nil, err
	}

	storage, err := newStorage(ctx, cfg, logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	failures, err := a.newTracker(ctx)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	store := repository.NewFileMetaRepository(db)
	writer := service.NewFileWriter(storage, cfg.UploadRoot)
	locks := service.NewPostLocker()

	a.channel = service.NewCleanupChannel(cfg.CleanupQueueSize)
	a.consumer = service.NewCleanupConsumer(a.channel, writer, failures, logger)
	a.sweeper = service.NewSweeper(failures, storage, cfg.UploadRoot, a.channel, logger)
	a.janitor = service.NewTrackerJanitor(failures, storage, logger)

	a.scheduler = scheduler.New(logger)
	if err := a.scheduler.Register(ctx, "sweep", cfg.SweepSchedule, a.sweeper.Run); err != nil {
		a.closeResources()
		return nil, err
	}
	if err := a.scheduler.Register(ctx, "janitor", cfg.JanitorSchedule, a.runJanitor); err != nil {
		a.closeResources()
		return nil, err
	}

	// harus dibuat setelah semua langkah yang bisa gagal
	a.pool = workerpool.New(cfg.NumWorkers, cfg.WorkQueueSize, logger)
	a.Attachments = service.NewAttachments(
		a.pool,
		service.NewUploadCoordinator(store, writer, locks, logger),
		service.NewDeletionCoordinator(store, writer, failures, locks, logger),
		service.NewDownloadService(store, storage, logger),
	)

	a.ops = server.New(cfg.MetricsAddr, map[string]server.CheckFunc{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		"tracker":  failures.Ping,
	}, logger)

	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Storage, error) {
	if cfg.StorageMode != config.StorageModeS3 {
		return adapter.NewLocalStorage(logger), nil
	}

	client, err := adapter.NewS3Client(ctx, adapter.S3Options{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return adapter.NewS3Storage(client, cfg.S3Bucket, logger), nil
}

func (a *App) newTracker(ctx context.Context) (tracker.FailureTracker, error) {
	if a.cfg.TrackerBackend == config.TrackerBackendDB {
		return tracker.NewDBTracker(a.db, a.logger), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	failures := tracker.NewRedisTracker(a.redis, a.logger)
	if err := failures.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gagal terhubung ke redis %s: %w", a.cfg.RedisAddr, err)
	}
	return failures, nil
}

func (a *App) runJanitor(ctx context.Context) {
	if _, err := a.janitor.PruneStaleEntries(ctx); err != nil {
		a.logger.Error("Janitor tracker gagal", "error", err)
	}
}

// Run starts the background parts and blocks until ctx is cancelled, then
// shuts everything down in order: schedules, sweep hand-off, consumer, pool,
// ops server, connections.
func (a *App) Run(ctx context.Context) error {
	consumerCtx, stopConsumer := context.WithCancel(context.WithoutCancel(ctx))
	defer stopConsumer()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.consumer.Run(consumerCtx)
	}()

	a.ops.Start()
	a.scheduler.Start()
	a.logger.Info("Layanan lampiran berjalan. Tekan Ctrl+C untuk berhenti.")

	<-ctx.Done()
	a.logger.Info("Sinyal berhenti diterima, menghentikan layanan...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.channel.Close()
	consumerDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(consumerDone)
	}()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("Consumer cleanup belum selesai saat batas waktu tercapai")
		stopConsumer()
		<-consumerDone
	}

	a.pool.Close()
	if err := a.ops.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("Layanan lampiran berhenti.")
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	if a.pool != nil {
		a.pool.Close()
	}

	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gagal menutup koneksi redis: %w", err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
