package entry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
	"wareflow/internal/core/token"
	"wareflow/internal/core/tx"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/domain/catalogs/supplier"
	"wareflow/internal/domain/pricing"
	"wareflow/pkg/logger"
	"wareflow/pkg/numerator"
)

// Service provides business logic for purchase entries.
type Service struct {
	repo      Repository
	suppliers supplier.Repository
	products  product.Repository
	numerator *numerator.Service
	txManager tx.Manager
	auditor   *audit.Service
}

// NewService creates a new entry service.
func NewService(
	repo Repository,
	suppliers supplier.Repository,
	products product.Repository,
	num *numerator.Service,
	txManager tx.Manager,
	auditor *audit.Service,
) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		products:  products,
		numerator: num,
		txManager: txManager,
		auditor:   auditor,
	}
}

// CreateInput carries caller-supplied data for one new entry.
type CreateInput struct {
	SupplierBillNo  string
	SupplierCode    string
	Date            time.Time
	CreditDaysLimit int
	DiscountType    string
	DiscountValue   *decimal.Decimal
	Lines           []LineInput
}

// LineInput is one caller-supplied line. Exactly one of MarginPercentage
// and SellingPrice must be set; the other is derived.
type LineInput struct {
	Name             string
	Category         string
	Quantity         int64
	PurchasePrice    decimal.Decimal
	MarginPercentage *decimal.Decimal
	SellingPrice     *decimal.Decimal
	Shelf            string
	LowStock         *int64
}

// Create records a new purchase entry, creates the backing stock items,
// appends to the supplier's bill history, and audits — atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (*PurchaseEntry, error) {
	e, err := s.buildEntry(ctx, in)
	if err != nil {
		return nil, err
	}

	err = s.createOnce(ctx, e)
	if err != nil && apperror.IsDuplicate(err) && isEntryNoConflict(err) {
		// Another writer claimed the same number; take a fresh one and retry once
		logger.Warn(ctx, "entry number conflict, retrying", "entryNo", e.EntryNo)
		e.EntryNo = ""
		err = s.createOnce(ctx, e)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "entry created",
		"entryNo", e.EntryNo,
		"supplierCode", e.SupplierCode,
		"lines", len(e.Lines),
	)
	return e, nil
}

func isEntryNoConflict(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		return false
	}
	field, _ := appErr.Details["field"].(string)
	return field == "entryNo"
}

// buildEntry validates input and derives all computed fields.
func (s *Service) buildEntry(ctx context.Context, in CreateInput) (*PurchaseEntry, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("no authenticated actor")
	}
	actorID, err := id.Parse(actor.ID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid actor identity")
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	e := &PurchaseEntry{
		SupplierBillNo:  strings.TrimSpace(in.SupplierBillNo),
		SupplierCode:    strings.ToUpper(strings.TrimSpace(in.SupplierCode)),
		Date:            date,
		CreditDaysLimit: in.CreditDaysLimit,
		DiscountType:    in.DiscountType,
		DiscountValue:   in.DiscountValue,
		CreatedByID:     actorID,
		CreatedByName:   actor.Username,
	}

	for _, lineIn := range in.Lines {
		prices, err := pricing.Derive(lineIn.PurchasePrice, lineIn.MarginPercentage, lineIn.SellingPrice)
		if err != nil {
			return nil, err
		}

		qr, err := token.New()
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("stage", "identifier generation")
		}

		shelf := strings.TrimSpace(lineIn.Shelf)
		if shelf == "" {
			shelf = product.DefaultShelf
		}
		lowStock := int64(product.DefaultLowStock)
		if lineIn.LowStock != nil && *lineIn.LowStock > 0 {
			lowStock = *lineIn.LowStock
		}

		e.Lines = append(e.Lines, LineItem{
			LineID:           id.New(),
			LineNo:           len(e.Lines) + 1,
			Name:             strings.TrimSpace(lineIn.Name),
			Category:         strings.TrimSpace(lineIn.Category),
			Quantity:         lineIn.Quantity,
			PurchasePrice:    lineIn.PurchasePrice,
			MarginPercentage: prices.MarginPercentage,
			SellingPrice:     prices.SellingPrice,
			TotalCost:        pricing.LineTotal(lineIn.PurchasePrice, lineIn.Quantity),
			IdentifierCode:   qr,
			Shelf:            shelf,
			LowStock:         lowStock,
		})
	}

	e.RecalculateTotals()

	if err := e.Validate(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// createOnce runs the full creation transaction with one entry number.
func (s *Service) createOnce(ctx context.Context, e *PurchaseEntry) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.suppliers.GetByCode(ctx, e.SupplierCode)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("supplier", e.SupplierCode)
			}
			return err
		}

		taken, err := s.repo.ExistsBySupplierBillNo(ctx, e.SupplierBillNo)
		if err != nil {
			return fmt.Errorf("check bill number: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("entry", "supplierBillNo", e.SupplierBillNo)
		}

		if e.EntryNo == "" {
			e.EntryNo, err = s.numerator.Next(ctx, numerator.EntryConfig())
			if err != nil {
				return fmt.Errorf("generate entry number: %w", err)
			}
		}
		if id.IsNil(e.ID) {
			e.BaseEntity = entity.NewBaseEntity()
		}
		for i := range e.Lines {
			e.Lines[i].EntryID = e.ID
		}

		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}

		if err := s.products.CreateBatch(ctx, stockItemsFromLines(e)); err != nil {
			return fmt.Errorf("create stock items: %w", err)
		}

		if err := s.suppliers.AppendBillRef(ctx, &supplier.BillRef{
			ID:         id.New(),
			SupplierID: sup.ID,
			BillNo:     e.SupplierBillNo,
			EntryNo:    e.EntryNo,
			Date:       e.Date,
		}); err != nil {
			return fmt.Errorf("append bill history: %w", err)
		}

		return s.auditor.Append(ctx, audit.TypeEntry, "create", audit.Details{
			"entryNo":        e.EntryNo,
			"supplierBillNo": e.SupplierBillNo,
			"supplierCode":   e.SupplierCode,
			"billTotal":      e.BillTotal.String(),
			"finalPayable":   e.FinalPayableAmount.String(),
		})
	})
}

// stockItemsFromLines duplicates entry lines into standalone stock items.
func stockItemsFromLines(e *PurchaseEntry) []*product.StockItem {
	items := make([]*product.StockItem, 0, len(e.Lines))
	for _, line := range e.Lines {
		item := &product.StockItem{
			Name:             line.Name,
			Category:         line.Category,
			IdentifierCode:   line.IdentifierCode,
			EntryNo:          e.EntryNo,
			PurchasePrice:    line.PurchasePrice,
			MarginPercentage: line.MarginPercentage,
			SellingPrice:     line.SellingPrice,
			Quantity:         line.Quantity,
			SoldQty:          0,
			LowStock:         line.LowStock,
			Shelf:            line.Shelf,
		}
		item.BaseEntity = entity.NewBaseEntity()
		items = append(items, item)
	}
	return items
}

// GetByID retrieves an entry with its lines.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*PurchaseEntry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// GetByEntryNo retrieves an entry by its generated identifier.
func (s *Service) GetByEntryNo(ctx context.Context, entryNo string) (*PurchaseEntry, error) {
	return s.repo.GetByEntryNo(ctx, entryNo)
}

// List retrieves entries with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.ListResult[*PurchaseEntry], error) {
	return s.repo.List(ctx, f)
}

// UpdateInput carries the mutable header fields of an entry.
// EntryNo and SupplierBillNo are immutable and deliberately absent.
type UpdateInput struct {
	CreditDaysLimit *int
	DiscountType    *string
	DiscountValue   *decimal.Decimal
}

// Update modifies mutable header fields and recomputes the payable amount.
func (s *Service) Update(ctx context.Context, entryID id.ID, in UpdateInput) (*PurchaseEntry, error) {
	var e *PurchaseEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e.IsDeleted {
			return apperror.NewInvalidStateTransition(apperror.ReasonAlreadyDeleted,
				"cannot update a deleted entry").WithDetail("entryNo", e.EntryNo)
		}

		if in.CreditDaysLimit != nil {
			if *in.CreditDaysLimit < 0 {
				return apperror.NewValidation("credit days limit cannot be negative").
					WithDetail("field", "creditDaysLimit")
			}
			e.CreditDaysLimit = *in.CreditDaysLimit
		}
		if in.DiscountType != nil {
			e.DiscountType = *in.DiscountType
		}
		if in.DiscountValue != nil {
			e.DiscountValue = in.DiscountValue
		}
		if e.DiscountValue != nil && !pricing.IsValidDiscountType(e.DiscountType) {
			return apperror.NewValidation("discount type must be percentage or amount").
				WithDetail("field", "discountType")
		}

		e.FinalPayableAmount = pricing.ApplyDiscount(e.BillTotal, e.DiscountType, e.DiscountValue)
		e.Touch()

		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}

		return s.auditor.Append(ctx, audit.TypeEntry, "update", audit.Details{
			"entryNo": e.EntryNo,
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SoftDelete moves an entry Active -> SoftDeleted.
// Stock items created from the entry are intentionally left untouched.
func (s *Service) SoftDelete(ctx context.Context, entryID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		changed, err := s.repo.MarkDeleted(ctx, entryID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			e, err := s.repo.GetByID(ctx, entryID)
			if err != nil {
				return err
			}
			return apperror.NewInvalidStateTransition(apperror.ReasonAlreadyDeleted,
				"entry is already deleted").WithDetail("entryNo", e.EntryNo)
		}

		return s.auditor.Append(ctx, audit.TypeEntry, "delete", audit.Details{
			"entryId": entryID.String(),
		})
	})
}

// Recover moves an entry SoftDeleted -> Active, setting recoveredAt.
func (s *Service) Recover(ctx context.Context, entryID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		changed, err := s.repo.MarkRecovered(ctx, entryID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			e, err := s.repo.GetByID(ctx, entryID)
			if err != nil {
				return err
			}
			return apperror.NewInvalidStateTransition(apperror.ReasonNotDeleted,
				"entry is not deleted").WithDetail("entryNo", e.EntryNo)
		}

		return s.auditor.Append(ctx, audit.TypeEntry, "recover", audit.Details{
			"entryId": entryID.String(),
		})
	})
}

// PermanentDelete irreversibly removes a soft-deleted entry.
// Does not cascade to stock items.
func (s *Service) PermanentDelete(ctx context.Context, entryID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.repo.DeletePermanent(ctx, entryID)
		if err != nil {
			return err
		}
		if !removed {
			e, err := s.repo.GetByID(ctx, entryID)
			if err != nil {
				return err
			}
			return apperror.NewInvalidStateTransition(apperror.ReasonMustSoftDeleteFirst,
				"entry must be soft-deleted before permanent deletion").
				WithDetail("entryNo", e.EntryNo)
		}

		return s.auditor.Append(ctx, audit.TypeEntry, "permanent_delete", audit.Details{
			"entryId": entryID.String(),
		})
	})
}
