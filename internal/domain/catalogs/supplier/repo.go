package supplier

import (
	"context"

	"wareflow/internal/core/id"
	"wareflow/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// AppendBillRef appends one record to the supplier's bill history.
	// The history is append-only; records are never updated or removed.
	AppendBillRef(ctx context.Context, ref *BillRef) error

	// ListBillRefs returns the supplier's bill history, newest first.
	ListBillRefs(ctx context.Context, supplierID id.ID) ([]BillRef, error)
}
