package reports

import (
	"context"
	"fmt"
	"time"

	"wareflow/internal/core/apperror"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/documents/sale"
)

const (
	defaultReportLimit = 100
	maxReportLimit     = 1000
)

// Service provides report generation operations.
type Service struct {
	repo    Repository
	auditor *audit.Service
}

// NewService creates a new reports service.
func NewService(repo Repository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// GetEntryReport generates the purchase entry report.
func (s *Service) GetEntryReport(ctx context.Context, filter EntryReportFilter) (*EntryReport, error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, apperror.NewValidation("dateFrom must not be after dateTo")
	}
	filter.Limit = clampLimit(filter.Limit)

	report, err := s.repo.GetEntryReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get entry report: %w", err)
	}

	s.logAccess(ctx, "entry report")
	return report, nil
}

// GetStockReport generates the stock report.
func (s *Service) GetStockReport(ctx context.Context, filter StockReportFilter) (*StockReport, error) {
	filter.Limit = clampLimit(filter.Limit)

	report, err := s.repo.GetStockReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock report: %w", err)
	}

	s.logAccess(ctx, "stock report")
	return report, nil
}

// GetSalesReport generates the sales report.
func (s *Service) GetSalesReport(ctx context.Context, filter SalesReportFilter) (*SalesReport, error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, apperror.NewValidation("dateFrom must not be after dateTo")
	}
	if filter.PaymentMethod != "" && !sale.IsValidPaymentMethod(sale.PaymentMethod(filter.PaymentMethod)) {
		return nil, apperror.NewValidation("unknown payment method").
			WithDetail("paymentMethod", filter.PaymentMethod)
	}
	filter.Limit = clampLimit(filter.Limit)

	report, err := s.repo.GetSalesReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales report: %w", err)
	}

	s.logAccess(ctx, "sales report")
	return report, nil
}

// GetSupplierReport generates the per-supplier purchase summary.
func (s *Service) GetSupplierReport(ctx context.Context) (*SupplierReport, error) {
	report, err := s.repo.GetSupplierReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("get supplier report: %w", err)
	}

	s.logAccess(ctx, "supplier report")
	return report, nil
}

// GetCombinedReport bundles the headline numbers of every area.
func (s *Service) GetCombinedReport(ctx context.Context) (*CombinedReport, error) {
	report, err := s.repo.GetCombinedReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("get combined report: %w", err)
	}
	report.GeneratedAt = time.Now().UTC()

	s.logAccess(ctx, "combined report")
	return report, nil
}

// GetFilterOptions lists the distinct values usable in report filters.
func (s *Service) GetFilterOptions(ctx context.Context) (*FilterOptions, error) {
	options, err := s.repo.GetFilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("get filter options: %w", err)
	}
	return options, nil
}

// logAccess records report access when an actor is present. Report reads
// are not worth failing over a missing audit row.
func (s *Service) logAccess(ctx context.Context, name string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Append(ctx, audit.TypeReport, "view", audit.Details{"report": name})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultReportLimit
	}
	if limit > maxReportLimit {
		return maxReportLimit
	}
	return limit
}
