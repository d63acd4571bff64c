package product

import (
	"context"

	"wareflow/internal/domain"
)

// Repository defines the interface for StockItem persistence.
type Repository interface {
	domain.CatalogRepository[*StockItem]

	// GetByIdentifier retrieves a stock item by its QR token.
	GetByIdentifier(ctx context.Context, identifierCode string) (*StockItem, error)

	// ApplyDelta atomically changes on-hand quantity by delta, rejecting
	// the change when it would drive the quantity negative. Sale-driven
	// decreases also advance sold_qty in the same statement. Returns the
	// updated quantity.
	ApplyDelta(ctx context.Context, identifierCode string, delta int64, saleDriven bool) (int64, error)

	// CreateBatch inserts stock items in bulk (COPY protocol).
	// Used during purchase entry creation.
	CreateBatch(ctx context.Context, items []*StockItem) error

	// DeleteByIdentifier removes a stock item permanently.
	DeleteByIdentifier(ctx context.Context, identifierCode string) error

	// ListLowStock returns items at or below their reorder threshold.
	ListLowStock(ctx context.Context) ([]*StockItem, error)

	// ListCategories returns the distinct categories in use.
	ListCategories(ctx context.Context) ([]string, error)
}
