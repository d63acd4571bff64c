package sale

import (
	"context"
	"fmt"
	"time"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
	"wareflow/internal/core/tx"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/domain/pricing"
	"wareflow/pkg/logger"
	"wareflow/pkg/numerator"
)

// Service provides business logic for sale bills.
type Service struct {
	repo      Repository
	products  product.Repository
	numerator *numerator.Service
	txManager tx.Manager
	auditor   *audit.Service
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	products product.Repository,
	num *numerator.Service,
	txManager tx.Manager,
	auditor *audit.Service,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		numerator: num,
		txManager: txManager,
		auditor:   auditor,
	}
}

// LineInput is one requested sale line.
type LineInput struct {
	IdentifierCode string
	Quantity       int64
}

// CreateInput carries caller-supplied data for one new sale.
type CreateInput struct {
	PaymentMethod PaymentMethod
	Lines         []LineInput
}

// Create records a sale: deducts stock atomically per line, snapshots
// names and prices, and writes the bill — all in one transaction.
// Any line short on stock fails the whole sale.
func (s *Service) Create(ctx context.Context, in CreateInput) (*SaleBill, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("no authenticated actor")
	}
	actorID, err := id.Parse(actor.ID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid actor identity")
	}

	b := &SaleBill{
		BaseEntity:    entity.NewBaseEntity(),
		Date:          time.Now().UTC(),
		PaymentMethod: in.PaymentMethod,
		CashierID:     actorID,
		CashierName:   actor.Username,
	}

	err = s.createOnce(ctx, b, in)
	if err != nil && apperror.IsDuplicate(err) && isBillNoConflict(err) {
		// Another writer claimed the same number; take a fresh one and retry once
		logger.Warn(ctx, "bill number conflict, retrying", "billNo", b.BillNo)
		b.BillNo = ""
		err = s.createOnce(ctx, b, in)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"billNo", b.BillNo,
		"total", b.TotalAmount.String(),
		"lines", len(b.Lines),
	)
	return b, nil
}

func isBillNoConflict(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		return false
	}
	field, _ := appErr.Details["field"].(string)
	return field == "billNo"
}

// createOnce runs one full attempt: stock deduction, numbering, insert,
// audit. The caller retries once on a generated-number collision; the
// rolled-back transaction leaves nothing to undo.
func (s *Service) createOnce(ctx context.Context, b *SaleBill, in CreateInput) error {
	b.Lines = nil

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, lineIn := range in.Lines {
			if lineIn.Quantity <= 0 {
				return apperror.NewValidation("sale quantity must be positive").
					WithDetail("identifierCode", lineIn.IdentifierCode)
			}

			item, err := s.products.GetByIdentifier(ctx, lineIn.IdentifierCode)
			if err != nil {
				return err
			}

			// Conditional decrement; rejects the sale when stock is short
			if _, err := s.products.ApplyDelta(ctx, item.IdentifierCode, -lineIn.Quantity, true); err != nil {
				return err
			}

			b.Lines = append(b.Lines, Line{
				LineID:         id.New(),
				BillID:         b.ID,
				LineNo:         len(b.Lines) + 1,
				StockItemID:    item.ID,
				Name:           item.Name,
				IdentifierCode: item.IdentifierCode,
				Price:          item.SellingPrice,
				Quantity:       lineIn.Quantity,
				Total:          pricing.LineTotal(item.SellingPrice, lineIn.Quantity),
			})
		}

		b.RecalculateTotal()

		if err := b.Validate(ctx); err != nil {
			return err
		}

		billNo, err := s.numerator.Next(ctx, numerator.BillConfig())
		if err != nil {
			return fmt.Errorf("generate bill number: %w", err)
		}
		b.BillNo = billNo

		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}

		return s.auditor.Append(ctx, audit.TypeSales, "create", audit.Details{
			"billNo":        b.BillNo,
			"totalAmount":   b.TotalAmount.String(),
			"paymentMethod": string(b.PaymentMethod),
			"lines":         len(b.Lines),
		})
	})
}

// GetByID retrieves a bill with its lines.
func (s *Service) GetByID(ctx context.Context, billID id.ID) (*SaleBill, error) {
	return s.repo.GetByID(ctx, billID)
}

// GetByBillNo retrieves a bill by its generated identifier.
func (s *Service) GetByBillNo(ctx context.Context, billNo string) (*SaleBill, error) {
	return s.repo.GetByBillNo(ctx, billNo)
}

// List retrieves bills with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*SaleBill], error) {
	return s.repo.List(ctx, f)
}

// UpdateInput carries the mutable bill fields. Recorded lines, totals
// and the bill number never change; cancellation is a data edit and does
// not restock anything.
type UpdateInput struct {
	IsCanceled   *bool
	CancelReason *string
}

// Update modifies the cancellation fields of a recorded bill.
func (s *Service) Update(ctx context.Context, billID id.ID, in UpdateInput) (*SaleBill, error) {
	var b *SaleBill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetByID(ctx, billID)
		if err != nil {
			return err
		}

		if in.IsCanceled != nil {
			b.IsCanceled = *in.IsCanceled
		}
		if in.CancelReason != nil {
			b.CancelReason = *in.CancelReason
		}

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}

		return s.auditor.Append(ctx, audit.TypeSales, "update", audit.Details{
			"billNo":     b.BillNo,
			"isCanceled": b.IsCanceled,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale updated", "billNo", b.BillNo, "canceled", b.IsCanceled)
	return b, nil
}
