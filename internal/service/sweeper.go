package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/tracker"
)

type SweepResult struct {
	Skipped    bool
	Entries    int
	Scanned    int
	Matched    int
	Dispatched int
	Err        error
	Duration   time.Duration
}

// Sweeper finds tracked files that still exist under the upload root and
// hands each one to the cleanup channel. It never deletes files and never
// touches the tracker itself.
type Sweeper struct {
	tracker tracker.FailureTracker
	storage adapter.Storage
	root    string
	channel *CleanupChannel
	logger  *slog.Logger

	mu sync.Mutex
}

func NewSweeper(failures tracker.FailureTracker, storage adapter.Storage, uploadRoot string, channel *CleanupChannel, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		tracker: failures,
		storage: storage,
		root:    uploadRoot,
		channel: channel,
		logger:  logger.With(slog.String("component", "sweeper")),
	}
}

// Run is the scheduled entry point: one sweep plus resource usage logging.
func (s *Sweeper) Run(ctx context.Context) {
	monitor := startResourceMonitor(s.logger)
	result := s.Sweep(ctx)
	monitor.stop(s.logger, "sweep")

	if result.Err != nil {
		s.logger.Error("Sweep selesai dengan error", "error", result.Err)
	}
}

// Sweep runs one reconciliation pass. A call made while another pass is in
// flight returns immediately with Skipped set.
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	if !s.mu.TryLock() {
		s.logger.Warn("Sweep sebelumnya masih berjalan, eksekusi ini dilewati.")
		sweepRunsTotal.WithLabelValues("skipped").Inc()
		return SweepResult{Skipped: true}
	}
	defer s.mu.Unlock()

	start := time.Now()
	result := s.sweep(ctx)
	result.Duration = time.Since(start)

	sweepDurationSeconds.Observe(result.Duration.Seconds())
	sweepDispatchedTotal.Add(float64(result.Dispatched))
	if result.Err != nil {
		sweepRunsTotal.WithLabelValues("error").Inc()
	} else {
		sweepRunsTotal.WithLabelValues("ok").Inc()
	}

	s.logger.Info("Sweep selesai",
		slog.Int("entri", result.Entries),
		slog.Int("dipindai", result.Scanned),
		slog.Int("cocok", result.Matched),
		slog.Int("dikirim", result.Dispatched),
		slog.Duration("durasi", result.Duration),
	)
	return result
}

func (s *Sweeper) sweep(ctx context.Context) SweepResult {
	var result SweepResult

	entries, err := s.tracker.ListAll(ctx)
	if err != nil {
		s.logger.Error("Gagal membaca tracker, sweep dibatalkan", "error", err)
		result.Err = err
		return result
	}
	result.Entries = len(entries)
	if len(entries) == 0 {
		s.logger.Info("Tidak ada file gagal hapus yang tercatat.")
		return result
	}

	pending := make(map[string][]tracker.Key, len(entries))
	for _, key := range entries {
		pending[key.StoredName] = append(pending[key.StoredName], key)
	}

	var matches []tracker.Key
	err = s.storage.Walk(ctx, s.root, func(path, name string) error {
		result.Scanned++
		keys, ok := pending[name]
		if !ok {
			return nil
		}
		for _, key := range keys {
			if key.Path != path {
				s.logger.Debug("Lokasi file berbeda dari entri tracker", "entry", key.String(), "ditemukan", path)
			}
		}
		matches = append(matches, keys...)
		delete(pending, name)
		return nil
	})
	if err != nil {
		// tracker tidak diubah, sweep berikutnya akan mencoba lagi
		s.logger.Error("Gagal menelusuri direktori upload, sweep dibatalkan", "root", s.root, "error", err)
		result.Err = err
		return result
	}
	result.Matched = len(matches)

	for _, key := range matches {
		if err := s.channel.Publish(ctx, CleanupEvent{Key: key}); err != nil {
			s.logger.Error("Gagal mengirim event cleanup", "entry", key.String(), "error", err)
			result.Err = err
			return result
		}
		result.Dispatched++
	}
	return result
}
