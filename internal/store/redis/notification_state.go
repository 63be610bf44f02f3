// Package redis provides a Redis-based implementation of
// notification.StateStore, used when multiple service instances must share
// the permission decision and live notification tags.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quantcasa/internal/config"
	"quantcasa/internal/notification"
)

// Key layout in Redis.
const (
	permissionKey = "notify:permission"
	prefixActive  = "notify:active:"
)

// NotificationStateStore implements notification.StateStore using Redis.
// Live notification TTLs map directly onto Redis key expiry, so the
// auto-dismiss needs no timer bookkeeping.
type NotificationStateStore struct {
	client *redis.Client
}

// NewNotificationStateStore creates a new Redis-backed notification state store.
func NewNotificationStateStore(cfg *config.RedisConfig) (*NotificationStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &NotificationStateStore{client: client}, nil
}

// activeKey generates the Redis key for a live notification tag.
func activeKey(tag string) string {
	return prefixActive + tag
}

// GetPermission returns the stored permission, or PermissionDefault when
// none has been recorded.
func (s *NotificationStateStore) GetPermission(ctx context.Context) (notification.Permission, error) {
	value, err := s.client.Get(ctx, permissionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notification.PermissionDefault, nil
		}
		return notification.PermissionDefault, fmt.Errorf("failed to get permission: %w", err)
	}

	p := notification.Permission(value)
	if !p.IsValid() {
		return notification.PermissionDefault, nil
	}
	return p, nil
}

// SetPermission records the user's decision.
func (s *NotificationStateStore) SetPermission(ctx context.Context, p notification.Permission) error {
	if err := s.client.Set(ctx, permissionKey, string(p), 0).Err(); err != nil {
		return fmt.Errorf("failed to set permission: %w", err)
	}
	return nil
}

// PutActive stores a live notification under its tag with the given TTL.
// SET replaces any prior value, giving replace-don't-stack semantics.
func (s *NotificationStateStore) PutActive(ctx context.Context, tag string, n *notification.Notification, ttl time.Duration) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := s.client.Set(ctx, activeKey(tag), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set active notification: %w", err)
	}
	return nil
}

// GetActive returns the live notification for a tag, or nil if none exists
// or the key has expired.
func (s *NotificationStateStore) GetActive(ctx context.Context, tag string) (*notification.Notification, error) {
	data, err := s.client.Get(ctx, activeKey(tag)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active notification: %w", err)
	}

	var n notification.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return &n, nil
}

// DeleteActive dismisses a live notification.
func (s *NotificationStateStore) DeleteActive(ctx context.Context, tag string) error {
	if err := s.client.Del(ctx, activeKey(tag)).Err(); err != nil {
		return fmt.Errorf("failed to delete active notification: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *NotificationStateStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
