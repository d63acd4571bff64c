package supplier

import (
	"context"
	"fmt"
	"strings"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/id"
	"wareflow/internal/core/tx"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/pkg/logger"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   *audit.Service
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, auditor *audit.Service) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Create registers a new supplier. The name is normalized and the code
// must be unique across all suppliers, soft-deleted ones included.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	sup.Name = NormalizeName(sup.Name)
	sup.Code = strings.ToUpper(strings.TrimSpace(sup.Code))

	if err := sup.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByCode(ctx, sup.Code)
		if err != nil {
			return fmt.Errorf("check supplier code: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("supplier", "supplierCode", sup.Code)
		}

		if err := s.repo.Create(ctx, sup); err != nil {
			return fmt.Errorf("create supplier: %w", err)
		}

		return s.auditor.Append(ctx, audit.TypeSupplier, "create", audit.Details{
			"supplierCode": sup.Code,
			"supplierName": sup.Name,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "supplier created", "code", sup.Code)
	return nil
}

// Update modifies supplier contact details. The code is immutable after
// creation; an incoming code is ignored in favor of the stored one.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, sup.ID)
		if err != nil {
			return err
		}

		sup.Code = existing.Code
		sup.Name = NormalizeName(sup.Name)

		if err := sup.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, sup); err != nil {
			return fmt.Errorf("update supplier: %w", err)
		}

		return s.auditor.Append(ctx, audit.TypeSupplier, "update", audit.Details{
			"supplierCode": sup.Code,
		})
	})
}

// GetByID retrieves a supplier by ID.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// GetByCode retrieves a supplier by its 4-letter code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Supplier, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// List retrieves suppliers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Supplier], error) {
	return s.repo.List(ctx, filter)
}

// BillHistory returns the supplier's append-only bill history.
func (s *Service) BillHistory(ctx context.Context, supplierID id.ID) ([]BillRef, error) {
	if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
		return nil, err
	}
	return s.repo.ListBillRefs(ctx, supplierID)
}

// Delete soft-deletes a supplier.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.repo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if sup.IsDeleted {
			return apperror.NewInvalidStateTransition(apperror.ReasonAlreadyDeleted,
				"supplier is already deleted").WithDetail("supplierCode", sup.Code)
		}

		actor := appctx.GetActor(ctx)
		actorName := ""
		if actor != nil {
			actorName = actor.Username
		}
		sup.MarkDeleted(actorName)
		sup.Touch()

		if err := s.repo.Update(ctx, sup); err != nil {
			return fmt.Errorf("delete supplier: %w", err)
		}

		return s.auditor.Append(ctx, audit.TypeSupplier, "delete", audit.Details{
			"supplierCode": sup.Code,
		})
	})
}
