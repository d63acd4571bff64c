package auth

import (
	"context"

	"wareflow/internal/core/id"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*User, error)

	// ActorExists satisfies audit.ActorChecker.
	ActorExists(ctx context.Context, actorID id.ID) (bool, error)

	// AdminEmail returns the email of the admin account, used as the
	// credit alert recipient. Empty when no admin has an email set.
	AdminEmail(ctx context.Context) (string, error)
}
