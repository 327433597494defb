package store

import (
	"context"
	"time"
)

// KeyValueRepo is a small durable string map. It backs session credentials
// and legacy records imported from the browser client.
type KeyValueRepo interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int    // max results (0 = unlimited)
	Kind  string // exact kind match, empty for all
	From  time.Time
}

// MentorEventData captures a single Q-Mentor call.
type MentorEventData struct {
	Kind         string // guidance, tips, recommendations, learning-path, health
	Source       string // remote, or the local model id
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	Prompt       string
	Answer       string
}

// MentorEvent is a stored MentorEventData.
type MentorEvent struct {
	ID        int
	Timestamp time.Time
	MentorEventData
}

// MentorEventRepo provides append and query access to the mentor journal.
type MentorEventRepo interface {
	// Append records a mentor call.
	Append(ctx context.Context, data MentorEventData) error

	// Query returns events, newest first.
	Query(ctx context.Context, opts QueryOpts) ([]MentorEvent, error)

	// Get returns a single event by ID, or nil if it doesn't exist.
	Get(ctx context.Context, id int) (*MentorEvent, error)
}
