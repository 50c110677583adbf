package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic jobs. A job still running when its next tick
// arrives is skipped, and a panicking job is logged instead of killing the
// process.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	logger = logger.With(slog.String("component", "scheduler"))
	cronLogger := slogAdapter{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// Register adds job under spec. An empty spec disables the job.
func (s *Scheduler) Register(ctx context.Context, name, spec string, job func(context.Context)) error {
	if spec == "" {
		s.logger.Info("Jadwal kosong, job tidak dijadwalkan", "job", name)
		return nil
	}

	s.logger.Info("Menjadwalkan job", "job", name, "schedule", spec)
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Cron job terpicu.", "job", name)
		jobCtx, jobCancel := context.WithCancel(ctx)
		defer jobCancel()
		job(jobCtx)
	})
	if err != nil {
		return fmt.Errorf("tidak dapat menambahkan cron job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler berjalan.", "jobs", s.Len())
}

// Stop halts new runs and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Menghentikan scheduler...")
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler berhenti.")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job masih berjalan saat batas waktu berhenti tercapai")
		return ctx.Err()
	}
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
