package entry

import (
	"context"
	"time"

	"wareflow/internal/core/id"
	"wareflow/internal/domain"
)

// ListFilter narrows entry list queries.
type ListFilter struct {
	domain.ListFilter

	SupplierCode string
	DateFrom     *time.Time
	DateTo       *time.Time

	// OnCredit selects entries with creditDaysLimit > 0
	OnCredit *bool

	// OnlyDeleted restricts the list to soft-deleted entries.
	OnlyDeleted bool
}

// Repository defines the interface for PurchaseEntry persistence.
type Repository interface {
	// Create inserts the entry together with its lines.
	Create(ctx context.Context, e *PurchaseEntry) error

	// GetByID retrieves an entry with its lines.
	GetByID(ctx context.Context, entryID id.ID) (*PurchaseEntry, error)

	// GetByEntryNo retrieves an entry by its generated identifier.
	GetByEntryNo(ctx context.Context, entryNo string) (*PurchaseEntry, error)

	// Update modifies mutable header fields (optimistic locking).
	Update(ctx context.Context, e *PurchaseEntry) error

	// List retrieves entries with filtering and pagination.
	List(ctx context.Context, f ListFilter) (domain.ListResult[*PurchaseEntry], error)

	// ExistsBySupplierBillNo checks bill number uniqueness across all
	// entries, soft-deleted ones included.
	ExistsBySupplierBillNo(ctx context.Context, billNo string) (bool, error)

	// MarkDeleted atomically flips is_deleted false -> true.
	// Returns false when the entry was already deleted.
	MarkDeleted(ctx context.Context, entryID id.ID, at time.Time) (bool, error)

	// MarkRecovered atomically flips is_deleted true -> false, clearing
	// deleted_at and setting recovered_at.
	// Returns false when the entry was not soft-deleted.
	MarkRecovered(ctx context.Context, entryID id.ID, at time.Time) (bool, error)

	// DeletePermanent removes a soft-deleted entry and its lines.
	// Returns false when the entry is still active.
	DeletePermanent(ctx context.Context, entryID id.ID) (bool, error)

	// ListDueForAlert returns entries with credit enabled, alert not yet
	// triggered, and a credit window expiring at or before deadline.
	ListDueForAlert(ctx context.Context, deadline time.Time) ([]*PurchaseEntry, error)

	// MarkAlertTriggered flips alert_triggered false -> true.
	// Returns false when the alert was already triggered.
	MarkAlertTriggered(ctx context.Context, entryID id.ID) (bool, error)
}
