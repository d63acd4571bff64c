package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	GetEntryReport(ctx context.Context, filter EntryReportFilter) (*EntryReport, error)
	GetStockReport(ctx context.Context, filter StockReportFilter) (*StockReport, error)
	GetSalesReport(ctx context.Context, filter SalesReportFilter) (*SalesReport, error)
	GetSupplierReport(ctx context.Context) (*SupplierReport, error)
	GetCombinedReport(ctx context.Context) (*CombinedReport, error)
	GetFilterOptions(ctx context.Context) (*FilterOptions, error)
}
