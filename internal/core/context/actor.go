package context

import (
	"context"

	"wareflow/internal/core/security"
)

// Actor identifies the authenticated caller of an engine operation.
// The engine trusts this input; authentication happens at the boundary.
type Actor struct {
	ID       string
	Username string
	Role     security.Role
}

type actorKey struct{}

// WithActor adds the actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the actor from context or nil.
func GetActor(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}
