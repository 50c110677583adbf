package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"chrononews-attachments/internal/constant"

	"github.com/redis/go-redis/v9"
)

type RedisTracker struct {
	client *redis.Client
	setKey string
	logger *slog.Logger
}

func NewRedisTracker(client *redis.Client, logger *slog.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		setKey: constant.FailedFileSet,
		logger: logger.With(slog.String("component", "tracker")),
	}
}

func (t *RedisTracker) Record(ctx context.Context, key Key) error {
	if err := t.client.SAdd(ctx, t.setKey, key.String()).Err(); err != nil {
		return fmt.Errorf("gagal mencatat %s ke %s: %w", key, t.setKey, err)
	}
	return nil
}

func (t *RedisTracker) ListAll(ctx context.Context) ([]Key, error) {
	members, err := t.client.SMembers(ctx, t.setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("gagal membaca %s: %w", t.setKey, err)
	}

	keys := make([]Key, 0, len(members))
	for _, member := range members {
		key, err := ParseKey(member)
		if err != nil {
			t.logger.Warn("Entri tracker rusak dilewati", "entry", member, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (t *RedisTracker) Clear(ctx context.Context, key Key) error {
	if err := t.client.SRem(ctx, t.setKey, key.String()).Err(); err != nil {
		return fmt.Errorf("gagal menghapus %s dari %s: %w", key, t.setKey, err)
	}
	return nil
}

func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}
