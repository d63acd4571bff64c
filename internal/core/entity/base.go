// Package entity holds shared base types for catalogs and documents.
package entity

import (
	"context"
	"time"

	"wareflow/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all persisted entities.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// Lifecycle tracks the soft-delete state of an entity.
// Entities move active -> deleted -> (recovered | purged).
type Lifecycle struct {
	IsDeleted bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	DeletedBy string     `db:"deleted_by" json:"deletedBy,omitempty"`
}

// MarkDeleted records a soft delete by the given actor.
func (l *Lifecycle) MarkDeleted(actor string) {
	now := time.Now().UTC()
	l.IsDeleted = true
	l.DeletedAt = &now
	l.DeletedBy = actor
}

// Recover clears the soft-delete state.
func (l *Lifecycle) Recover() {
	l.IsDeleted = false
	l.DeletedAt = nil
	l.DeletedBy = ""
}
