package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrPoolClosed = errors.New("worker pool sudah ditutup")

var (
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_pool_tasks_total",
		Help: "Jumlah tugas yang dijalankan per jalur eksekusi",
	}, []string{"path"})
)

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool runs tasks on a fixed number of workers behind a bounded queue. When
// the queue is full the task runs on the caller's goroutine instead.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

func New(numWorkers, queueSize int, logger *slog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		jobs:   make(chan job, queueSize),
		logger: logger.With(slog.String("component", "workerpool")),
	}

	p.wg.Add(numWorkers)
	for i := 1; i <= numWorkers; i++ {
		go p.worker(i)
	}

	p.logger.Info("Worker pool dimulai", "workers", numWorkers, "queue", queueSize)
	return p
}

// Do runs fn and waits for its result.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	select {
	case p.jobs <- j:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		tasksTotal.WithLabelValues("caller").Inc()
		p.logger.Debug("Antrean penuh, tugas dijalankan oleh pemanggil")
		return run(ctx, fn)
	}

	return <-j.done
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Worker pool berhenti")
}

func (p *Pool) worker(workerID int) {
	defer p.wg.Done()

	for j := range p.jobs {
		if err := j.ctx.Err(); err != nil {
			j.done <- err
			continue
		}
		p.logger.Debug("Worker memproses tugas", "worker_id", workerID)
		tasksTotal.WithLabelValues("worker").Inc()
		j.done <- run(j.ctx, j.fn)
	}
}

func run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic pada tugas: %v", r)
		}
	}()
	return fn(ctx)
}
