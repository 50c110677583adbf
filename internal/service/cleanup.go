package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chrononews-attachments/internal/tracker"
)

var ErrChannelClosed = errors.New("channel cleanup sudah ditutup")

type CleanupEvent struct {
	Key tracker.Key
}

// CleanupChannel is the bounded hand-off between the sweeper and the
// consumer that performs the deletion.
type CleanupChannel struct {
	events    chan CleanupEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewCleanupChannel(size int) *CleanupChannel {
	return &CleanupChannel{
		events: make(chan CleanupEvent, size),
		done:   make(chan struct{}),
	}
}

func (c *CleanupChannel) Publish(ctx context.Context, event CleanupEvent) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrChannelClosed
	case c.events <- event:
		return nil
	}
}

func (c *CleanupChannel) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

type CleanupConsumer struct {
	channel *CleanupChannel
	writer  *FileWriter
	tracker tracker.FailureTracker
	logger  *slog.Logger
}

func NewCleanupConsumer(channel *CleanupChannel, writer *FileWriter, failures tracker.FailureTracker, logger *slog.Logger) *CleanupConsumer {
	return &CleanupConsumer{
		channel: channel,
		writer:  writer,
		tracker: failures,
		logger:  logger.With(slog.String("component", "cleanup")),
	}
}

// Run handles events until ctx is cancelled or the channel is closed. After
// Close, events already buffered are still handled.
func (c *CleanupConsumer) Run(ctx context.Context) {
	c.logger.Info("Consumer cleanup berjalan.")
	defer c.logger.Info("Consumer cleanup berhenti.")

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.channel.events:
			c.Handle(ctx, event)
		case <-c.channel.done:
			c.drain(ctx)
			return
		}
	}
}

func (c *CleanupConsumer) drain(ctx context.Context) {
	for {
		select {
		case event := <-c.channel.events:
			c.Handle(ctx, event)
		default:
			return
		}
	}
}

// Handle tries the deletion exactly once. The tracker entry is cleared only
// after the file is confirmed gone; a failure leaves it for the next sweep.
func (c *CleanupConsumer) Handle(ctx context.Context, event CleanupEvent) (deleted bool) {
	defer func() {
		if r := recover(); r != nil {
			cleanupResultsTotal.WithLabelValues("panic").Inc()
			c.logger.Error("Panic saat memproses event cleanup", "entry", event.Key.String(), "panic", fmt.Sprint(r))
			deleted = false
		}
	}()

	if err := c.writer.Delete(ctx, event.Key.Path); err != nil {
		cleanupResultsTotal.WithLabelValues("failed").Inc()
		c.logger.Error("Cleanup: gagal menghapus file, akan dicoba pada sweep berikutnya", "path", event.Key.Path, "error", err)
		return false
	}

	if err := c.tracker.Clear(context.WithoutCancel(ctx), event.Key); err != nil {
		cleanupResultsTotal.WithLabelValues("clear_failed").Inc()
		c.logger.Error("Cleanup: file terhapus tetapi entri tracker gagal dibersihkan", "entry", event.Key.String(), "error", err)
		return true
	}

	cleanupResultsTotal.WithLabelValues("ok").Inc()
	c.logger.Info("Cleanup: file berhasil dihapus", "stored_name", event.Key.StoredName, "path", event.Key.Path)
	return true
}
