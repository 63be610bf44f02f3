package memory

import (
	"context"
	"sync"
	"time"

	"quantcasa/internal/notification"
)

// NotificationStateStore is an in-memory implementation of
// notification.StateStore. TTL expiration is checked on access (lazy
// expiration), matching the Redis implementation's observable behavior.
type NotificationStateStore struct {
	mu sync.RWMutex

	permission notification.Permission

	// active stores live notifications by tag.
	active map[string]*activeEntry
}

// activeEntry wraps a Notification with expiration tracking.
type activeEntry struct {
	notification *notification.Notification
	expiresAt    time.Time
}

// NewNotificationStateStore creates a new in-memory notification state store.
func NewNotificationStateStore() *NotificationStateStore {
	return &NotificationStateStore{
		permission: notification.PermissionDefault,
		active:     make(map[string]*activeEntry),
	}
}

// GetPermission returns the stored permission.
func (s *NotificationStateStore) GetPermission(ctx context.Context) (notification.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission, nil
}

// SetPermission records the user's decision.
func (s *NotificationStateStore) SetPermission(ctx context.Context, p notification.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = p
	return nil
}

// PutActive records a live notification, replacing any prior entry for the
// same tag.
func (s *NotificationStateStore) PutActive(ctx context.Context, tag string, n *notification.Notification, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nCopy := *n
	s.active[tag] = &activeEntry{
		notification: &nCopy,
		expiresAt:    time.Now().Add(ttl),
	}
	return nil
}

// GetActive returns the live notification for a tag, or nil if none exists
// or it has expired.
func (s *NotificationStateStore) GetActive(ctx context.Context, tag string) (*notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.active[tag]
	if !exists {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	result := *entry.notification
	return &result, nil
}

// DeleteActive dismisses a live notification.
func (s *NotificationStateStore) DeleteActive(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, tag)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *NotificationStateStore) Close() error {
	return nil
}
