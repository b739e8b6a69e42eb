// Package eventstore keeps an append-only audit trail of prepare runs: what base
// path and preset a build resolved, how the tree was rewritten, and whether it
// verified. It records what happened; it is never read back as configuration.
package eventstore

import (
	"context"
	"time"
)

// Event types appended during a prepare run.
const (
	TypeResolved  = "resolved"
	TypeRebased   = "rebased"
	TypeFinalized = "finalized"
	TypeVerified  = "verified"
	TypeFailed    = "failed"
)

// Event is one recorded step of a build.
type Event struct {
	ID        int64             `json:"id"`
	BuildID   string            `json:"build_id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID retrieves all events for a specific build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// Recent retrieves up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
