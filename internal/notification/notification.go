// Package notification dispatches out-of-band alerts when a price alert
// fires. Delivery is best-effort: the in-app alert state is the source of
// truth and a notification is only an echo of it, so every failure here is
// swallowed rather than surfaced to the evaluation pass.
package notification

import (
	"context"
	"time"
)

// Permission is the user's notification consent state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// IsValid returns true if the permission is a known valid value.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionDefault:
		return true
	default:
		return false
	}
}

// DisplayTTL is how long a delivered notification stays live before it
// auto-dismisses without user interaction.
const DisplayTTL = 8 * time.Second

// Notification is the payload handed to sinks.
type Notification struct {
	// Tag is the de-duplication key: the originating alert's ID. A second
	// trigger of the same alert replaces the prior notification instead
	// of stacking a new one.
	Tag string `json:"tag"`

	Title string `json:"title"`
	Body  string `json:"body"`

	IssuedAt time.Time `json:"issued_at"`
}

// Prompter models the user-interaction step of a permission request.
// Prompting may block until the user responds; implementations should honor
// context cancellation.
type Prompter interface {
	Prompt(ctx context.Context) (Permission, error)
}

// StaticPrompter always answers with a fixed permission, typically sourced
// from configuration in headless deployments.
type StaticPrompter struct {
	Result Permission
}

// Prompt returns the configured permission.
func (p *StaticPrompter) Prompt(ctx context.Context) (Permission, error) {
	return p.Result, nil
}

// Sink delivers notifications to their final surface.
type Sink interface {
	Deliver(ctx context.Context, n *Notification) error
}

// StateStore holds the permission decision and the set of live notification
// tags. All methods must be safe for concurrent use.
type StateStore interface {
	// GetPermission returns the stored permission, or PermissionDefault
	// when none has been recorded.
	GetPermission(ctx context.Context) (Permission, error)

	// SetPermission records the user's decision.
	SetPermission(ctx context.Context, p Permission) error

	// PutActive records a live notification under its tag with the given
	// TTL, replacing any prior entry for the same tag. TTL expiry is the
	// auto-dismiss.
	PutActive(ctx context.Context, tag string, n *Notification, ttl time.Duration) error

	// GetActive returns the live notification for a tag, or nil if none
	// exists or it has expired.
	GetActive(ctx context.Context, tag string) (*Notification, error)

	// DeleteActive dismisses a live notification.
	DeleteActive(ctx context.Context, tag string) error

	// Close releases any resources held by the store.
	Close() error
}
