// Package cache provides Redis-based deduplication of inbound chat updates.
// Telegram re-delivers updates after restarts or missed acknowledgements;
// the tracker remembers which update IDs were already processed so a
// re-delivered message is not re-parsed and re-submitted.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trade-parser-bot/config"
)

const (
	// processedUpdateKeyPrefix is the prefix for processed update markers.
	// Format: parser:processed_update:{updateID}
	processedUpdateKeyPrefix = "parser:processed_update"

	// defaultRetention is how long a processed marker is kept. Telegram
	// retains undelivered updates for 24h, so anything older cannot come
	// back.
	defaultRetention = 48 * time.Hour
)

// UpdateTracker marks chat updates as processed in Redis.
type UpdateTracker struct {
	client    *redis.Client
	retention time.Duration
}

// NewClient creates a Redis client from configuration.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewUpdateTracker creates an UpdateTracker. A nil client disables tracking:
// every update then reads as unprocessed.
func NewUpdateTracker(client *redis.Client) *UpdateTracker {
	return &UpdateTracker{client: client, retention: defaultRetention}
}

// IsProcessed reports whether an update ID was already handled. Fails open:
// a Redis error reads as unprocessed, since re-parsing is preferable to
// silently dropping a message.
func (t *UpdateTracker) IsProcessed(ctx context.Context, updateID int) bool {
	if t.client == nil {
		return false
	}
	n, err := t.client.Exists(ctx, t.key(updateID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// MarkProcessed records an update ID with the retention TTL.
func (t *UpdateTracker) MarkProcessed(ctx context.Context, updateID int) error {
	if t.client == nil {
		return nil
	}
	if err := t.client.Set(ctx, t.key(updateID), time.Now().Unix(), t.retention).Err(); err != nil {
		return fmt.Errorf("failed to mark update processed: %w", err)
	}
	return nil
}

func (t *UpdateTracker) key(updateID int) string {
	return fmt.Sprintf("%s:%d", processedUpdateKeyPrefix, updateID)
}
