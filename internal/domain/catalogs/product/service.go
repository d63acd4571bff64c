package product

import (
	"context"
	"fmt"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
	"wareflow/internal/core/tx"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/pkg/logger"
)

// Service provides business logic for the StockItem catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   *audit.Service
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		auditor:   auditor,
	}
}

// GetByID retrieves a stock item by ID.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*StockItem, error) {
	return s.repo.GetByID(ctx, itemID)
}

// GetByIdentifier retrieves a stock item by its QR token.
func (s *Service) GetByIdentifier(ctx context.Context, identifierCode string) (*StockItem, error) {
	return s.repo.GetByIdentifier(ctx, identifierCode)
}

// List retrieves stock items with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*StockItem], error) {
	return s.repo.List(ctx, filter)
}

// ListLowStock returns items at or below their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*StockItem, error) {
	return s.repo.ListLowStock(ctx)
}

// ListCategories returns the distinct categories in use.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// Update modifies descriptive fields of a stock item. Quantity and sold
// counters never change here; those move only through the ledger.
func (s *Service) Update(ctx context.Context, item *StockItem) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}

		// Ledger-owned fields are immutable through this path
		item.IdentifierCode = existing.IdentifierCode
		item.EntryNo = existing.EntryNo
		item.Quantity = existing.Quantity
		item.SoldQty = existing.SoldQty

		if err := item.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("update stock item: %w", err)
		}

		return s.auditor.Append(ctx, audit.TypeProduct, "update", audit.Details{
			"identifierCode": item.IdentifierCode,
			"productName":    item.Name,
		})
	})
}

// Adjust applies a manual stock correction and audits it.
// The adjustment type must agree with the sign of the change; a decrease
// that would drive quantity negative is rejected.
func (s *Service) Adjust(ctx context.Context, adj Adjustment) (int64, error) {
	if err := adj.Validate(); err != nil {
		return 0, err
	}

	var updated int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.GetByIdentifier(ctx, adj.IdentifierCode)
		if err != nil {
			return err
		}

		updated, err = s.repo.ApplyDelta(ctx, adj.IdentifierCode, adj.Delta(), false)
		if err != nil {
			return err
		}

		return s.auditor.Append(ctx, audit.TypeStock, "adjust", audit.Details{
			"productName":     item.Name,
			"identifierCode":  item.IdentifierCode,
			"adjustmentType":  string(adj.Type),
			"quantityChanged": adj.Quantity,
			"reason":          adj.Reason,
		})
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "stock adjusted",
		"identifier", adj.IdentifierCode,
		"type", string(adj.Type),
		"quantity", adj.Quantity,
	)
	return updated, nil
}

// Delete removes a stock item permanently. Remaining quantity is
// discarded with it; the purchase entry that stocked the item keeps its
// own line snapshot.
func (s *Service) Delete(ctx context.Context, identifierCode string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.repo.GetByIdentifier(ctx, identifierCode)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteByIdentifier(ctx, identifierCode); err != nil {
			return err
		}

		return s.auditor.Append(ctx, audit.TypeProduct, "delete", audit.Details{
			"productName":    item.Name,
			"identifierCode": item.IdentifierCode,
			"quantity":       item.Quantity,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock item deleted", "identifier", identifierCode)
	return nil
}

// AdjustmentHistory reconstructs manual adjustment history for one item
// from the audit log.
func (s *Service) AdjustmentHistory(ctx context.Context, identifierCode string) ([]audit.StockAdjustment, error) {
	if _, err := s.repo.GetByIdentifier(ctx, identifierCode); err != nil {
		return nil, err
	}
	return s.auditor.StockHistory(ctx, identifierCode)
}

// Deduct removes quantity for a sale. Exposed for the sale document
// service, which calls it inside its own transaction per line.
func (s *Service) Deduct(ctx context.Context, identifierCode string, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, apperror.NewInvalidAdjustment("sale quantity must be positive").
			WithDetail("quantity", quantity)
	}
	return s.repo.ApplyDelta(ctx, identifierCode, -quantity, true)
}
