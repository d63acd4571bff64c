package sale

import (
	"context"
	"time"

	"wareflow/internal/core/id"
	"wareflow/internal/domain"
)

// ListFilter narrows sale list queries.
type ListFilter struct {
	domain.ListFilter

	PaymentMethod PaymentMethod
	CashierID     *id.ID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Repository defines the interface for SaleBill persistence.
type Repository interface {
	// Create inserts the bill together with its lines.
	Create(ctx context.Context, b *SaleBill) error

	// GetByID retrieves a bill with its lines.
	GetByID(ctx context.Context, billID id.ID) (*SaleBill, error)

	// GetByBillNo retrieves a bill by its generated identifier.
	GetByBillNo(ctx context.Context, billNo string) (*SaleBill, error)

	// Update modifies mutable header fields (optimistic locking).
	// Lines are immutable once recorded.
	Update(ctx context.Context, b *SaleBill) error

	// List retrieves bills with filtering and pagination.
	List(ctx context.Context, f ListFilter) (domain.ListResult[*SaleBill], error)
}
