package audit

import (
	"context"
	"time"

	"wareflow/internal/core/id"
)

// Filter narrows history queries.
type Filter struct {
	ActorID *id.ID
	Type    Type

	// DetailKey/DetailValue match one key inside the details payload,
	// e.g. DetailKey "identifierCode" for stock history reconstruction.
	DetailKey   string
	DetailValue string

	From  *time.Time
	To    *time.Time
	Limit int
}

// Repository persists audit records. Append-only: no update or delete.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	Query(ctx context.Context, f Filter) ([]Record, error)
}

// ActorChecker verifies that an actor exists at append time.
// Implemented by the auth repository.
type ActorChecker interface {
	ActorExists(ctx context.Context, actorID id.ID) (bool, error)
}
