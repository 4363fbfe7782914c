// Package store defines the invocation journal: one append-only row per dispatched
// skill call. Implementations must behave identically on PostgreSQL and SQLite.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// InvocationRecord is the persisted outcome of one invocation.
// Parameters holds the extracted parameter map as JSON; credentials are never stored.
type InvocationRecord struct {
	ID          string
	Function    string
	ActionGroup string
	Parameters  json.RawMessage
	Status      int
	Error       string
	DurationMS  int64
	CreatedAt   time.Time
}

// Query filters Recent. Zero values mean no filter; Limit <= 0 uses DefaultLimit.
type Query struct {
	Function string
	Limit    int
}

// DefaultLimit bounds Recent when the query sets no limit.
const DefaultLimit = 50

// Journal appends and lists invocation records.
type Journal interface {
	// Append stores rec. Appending an existing ID is a no-op.
	Append(ctx context.Context, rec InvocationRecord) error
	// Recent returns the newest records first.
	Recent(ctx context.Context, q Query) ([]InvocationRecord, error)
}
