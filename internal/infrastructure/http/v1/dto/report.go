package dto

import (
	"time"

	"wareflow/internal/core/id"
	"wareflow/internal/domain/reports"
)

// EntryReportQuery binds filter parameters for the entry report.
type EntryReportQuery struct {
	DateFrom           *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo             *time.Time `form:"dateTo" time_format:"2006-01-02"`
	SupplierCode       string     `form:"supplierCode"`
	OnCredit           *bool      `form:"onCredit"`
	ReachedCreditLimit *bool      `form:"reachedCreditDaysLimit"`
	IncludeDeleted     bool       `form:"includeDeleted"`
	Limit              int        `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset             int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q *EntryReportQuery) ToFilter() reports.EntryReportFilter {
	return reports.EntryReportFilter{
		DateFrom:           q.DateFrom,
		DateTo:             q.DateTo,
		SupplierCode:       q.SupplierCode,
		OnCredit:           q.OnCredit,
		ReachedCreditLimit: q.ReachedCreditLimit,
		IncludeDeleted:     q.IncludeDeleted,
		Limit:              q.Limit,
		Offset:             q.Offset,
	}
}

// StockReportQuery binds filter parameters for the stock report.
type StockReportQuery struct {
	Category     string `form:"category"`
	Search       string `form:"search"`
	LowStockOnly bool   `form:"lowStock"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q *StockReportQuery) ToFilter() reports.StockReportFilter {
	return reports.StockReportFilter{
		Category:     q.Category,
		Search:       q.Search,
		LowStockOnly: q.LowStockOnly,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

// SalesReportQuery binds filter parameters for the sales report.
type SalesReportQuery struct {
	DateFrom      *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"dateTo" time_format:"2006-01-02"`
	PaymentMethod string     `form:"paymentMethod"`
	CashierID     string     `form:"cashierId"`
	Limit         int        `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset        int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q *SalesReportQuery) ToFilter() (reports.SalesReportFilter, error) {
	f := reports.SalesReportFilter{
		DateFrom:      q.DateFrom,
		DateTo:        q.DateTo,
		PaymentMethod: q.PaymentMethod,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if q.CashierID != "" {
		cashierID, err := id.Parse(q.CashierID)
		if err != nil {
			return f, err
		}
		f.CashierID = &cashierID
	}
	return f, nil
}
