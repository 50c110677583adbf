package service

import (
	"context"
	"log/slog"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/tracker"
)

// TrackerJanitor drops tracker entries whose file no longer exists, e.g.
// removed by hand or by a consumer whose Clear failed. The sweep can never
// match those, so without this they would stay forever.
type TrackerJanitor struct {
	tracker tracker.FailureTracker
	storage adapter.Storage
	logger  *slog.Logger
}

func NewTrackerJanitor(failures tracker.FailureTracker, storage adapter.Storage, logger *slog.Logger) *TrackerJanitor {
	return &TrackerJanitor{
		tracker: failures,
		storage: storage,
		logger:  logger.With(slog.String("component", "janitor")),
	}
}

func (j *TrackerJanitor) PruneStaleEntries(ctx context.Context) (int, error) {
	j.logger.Info("Memulai janitor tracker...")

	entries, err := j.tracker.ListAll(ctx)
	if err != nil {
		j.logger.Error("Janitor gagal membaca tracker", "error", err)
		return 0, err
	}

	pruned := 0
	for _, key := range entries {
		exists, err := j.storage.Exists(ctx, key.Path)
		if err != nil {
			j.logger.Warn("Janitor: gagal memeriksa file", "path", key.Path, "error", err)
			continue
		}
		if exists {
			continue
		}
		if err := j.tracker.Clear(ctx, key); err != nil {
			j.logger.Error("Janitor: gagal membuang entri", "entry", key.String(), "error", err)
			continue
		}
		pruned++
	}

	janitorPrunedTotal.Add(float64(pruned))
	if pruned > 0 {
		j.logger.Warn("Janitor: entri tracker tanpa file dibuang", "jumlah", pruned)
	} else {
		j.logger.Info("Janitor: tidak ada entri usang ditemukan.")
	}
	return pruned, nil
}
