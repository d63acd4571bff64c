package audit

import (
	"context"
	"fmt"
	"time"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/id"
	"wareflow/pkg/logger"
)

// Service appends and queries actor action records.
type Service struct {
	repo   Repository
	actors ActorChecker
}

// NewService creates a new audit service.
func NewService(repo Repository, actors ActorChecker) *Service {
	return &Service{repo: repo, actors: actors}
}

// Append records an action for the actor in context.
// Fails with NotFound if the actor no longer exists at append time.
func (s *Service) Append(ctx context.Context, t Type, action string, details Details) error {
	if !IsValidType(t) {
		return apperror.NewValidation("unknown audit type").
			WithDetail("type", string(t))
	}

	actor := appctx.GetActor(ctx)
	if actor == nil {
		return apperror.NewNotFound("actor", "")
	}

	actorID, err := id.Parse(actor.ID)
	if err != nil {
		return apperror.NewNotFound("actor", actor.ID)
	}

	exists, err := s.actors.ActorExists(ctx, actorID)
	if err != nil {
		return fmt.Errorf("check actor: %w", err)
	}
	if !exists {
		return apperror.NewNotFound("actor", actor.ID)
	}

	rec := &Record{
		ID:          id.New(),
		ActorID:     actorID,
		Action:      action,
		Type:        t,
		Date:        time.Now().UTC(),
		Details:     details,
		PerformedBy: actor.Username,
		Role:        actor.Role,
	}

	if err := s.repo.Append(ctx, rec); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// ActorHistory returns records appended by one actor, newest first.
func (s *Service) ActorHistory(ctx context.Context, actorID id.ID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.Query(ctx, Filter{ActorID: &actorID, Limit: limit})
}

// Query returns records matching the filter, newest first.
func (s *Service) Query(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	return s.repo.Query(ctx, f)
}

// StockHistory reconstructs manual adjustment history for one stock item
// by scanning stock-type records whose details reference the identifier.
func (s *Service) StockHistory(ctx context.Context, identifierCode string) ([]StockAdjustment, error) {
	recs, err := s.repo.Query(ctx, Filter{
		Type:        TypeStock,
		DetailKey:   "identifierCode",
		DetailValue: identifierCode,
		Limit:       500,
	})
	if err != nil {
		return nil, err
	}

	adjustments := make([]StockAdjustment, 0, len(recs))
	for _, rec := range recs {
		adj := StockAdjustment{
			IdentifierCode: identifierCode,
			PerformedBy:    rec.PerformedBy,
			Date:           rec.Date,
		}
		if v, ok := rec.Details["productName"].(string); ok {
			adj.ProductName = v
		}
		if v, ok := rec.Details["adjustmentType"].(string); ok {
			adj.AdjustmentType = v
		}
		if v, ok := rec.Details["reason"].(string); ok {
			adj.Reason = v
		}
		switch v := rec.Details["quantityChanged"].(type) {
		case int64:
			adj.QuantityChanged = v
		case float64:
			adj.QuantityChanged = int64(v)
		default:
			logger.Debug(ctx, "stock record without quantityChanged", "record", rec.ID.String())
		}
		adjustments = append(adjustments, adj)
	}

	return adjustments, nil
}
