// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"wareflow/internal/domain/reports"
	"wareflow/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetEntryReport generates the purchase entry report.
func (r *ReportRepo) GetEntryReport(ctx context.Context, filter reports.EntryReportFilter) (*reports.EntryReport, error) {
	q := r.builder.
		Select(
			"e.id", "e.entry_no", "e.supplier_bill_no", "e.supplier_code",
			"e.date", "e.credit_days_limit", "e.alert_triggered",
			"e.bill_total", "e.final_payable_amount", "e.is_deleted",
			"(SELECT COUNT(*) FROM doc_entry_lines l WHERE l.entry_id = e.id) AS line_count",
		).
		From("doc_entries e")

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"e.is_deleted": false})
	}
	if filter.SupplierCode != "" {
		q = q.Where(squirrel.Eq{"e.supplier_code": filter.SupplierCode})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"e.date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"e.date": *filter.DateTo})
	}
	if filter.OnCredit != nil {
		if *filter.OnCredit {
			q = q.Where(squirrel.Gt{"e.credit_days_limit": 0})
		} else {
			q = q.Where(squirrel.Eq{"e.credit_days_limit": 0})
		}
	}
	if filter.ReachedCreditLimit != nil {
		cond := "e.credit_days_limit > 0 AND e.date + make_interval(days => e.credit_days_limit) <= NOW()"
		if *filter.ReachedCreditLimit {
			q = q.Where(squirrel.Expr(cond))
		} else {
			q = q.Where(squirrel.Expr("NOT (" + cond + ")"))
		}
	}

	report := &reports.EntryReport{}

	// Summary over the filtered set, before pagination
	summaryQ := r.builder.
		Select(
			"COUNT(*) AS total_count",
			"COALESCE(SUM(bill_total), 0) AS total_billed",
			"COALESCE(SUM(final_payable_amount), 0) AS total_payable",
		).
		FromSelect(q, "sub")

	summarySQL, summaryArgs, err := summaryQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, summarySQL, summaryArgs...).
		Scan(&report.TotalCount, &report.TotalBilled, &report.TotalPayable); err != nil {
		return nil, fmt.Errorf("entry report summary: %w", err)
	}

	q = q.OrderBy("e.date DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("entry report: %w", err)
	}

	return report, nil
}

// GetStockReport generates the stock report.
func (r *ReportRepo) GetStockReport(ctx context.Context, filter reports.StockReportFilter) (*reports.StockReport, error) {
	q := r.builder.
		Select(
			"id", "name", "category", "identifier_code", "entry_no",
			"quantity", "sold_qty", "low_stock", "shelf",
			"purchase_price", "selling_price",
			"purchase_price * quantity AS stock_value",
		).
		From("cat_stock_items")

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"identifier_code": pattern},
		})
	}
	if filter.LowStockOnly {
		q = q.Where(squirrel.Expr("quantity <= low_stock"))
	}

	report := &reports.StockReport{}

	summaryQ := r.builder.
		Select(
			"COUNT(*) AS total_count",
			"COALESCE(SUM(quantity), 0) AS total_quantity",
			"COALESCE(SUM(purchase_price * quantity), 0) AS total_stock_value",
			"COALESCE(SUM(selling_price * quantity), 0) AS total_retail_value",
		).
		FromSelect(q, "sub")

	summarySQL, summaryArgs, err := summaryQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, summarySQL, summaryArgs...).
		Scan(&report.TotalCount, &report.TotalQuantity, &report.TotalStockValue, &report.TotalRetailValue); err != nil {
		return nil, fmt.Errorf("stock report summary: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}

	return report, nil
}

// GetSalesReport generates the sales report.
func (r *ReportRepo) GetSalesReport(ctx context.Context, filter reports.SalesReportFilter) (*reports.SalesReport, error) {
	q := r.builder.
		Select(
			"b.id", "b.bill_no", "b.date", "b.total_amount",
			"b.payment_method", "b.cashier_name",
			"(SELECT COUNT(*) FROM doc_sale_lines l WHERE l.bill_id = b.id) AS line_count",
		).
		From("doc_sale_bills b")

	if filter.PaymentMethod != "" {
		q = q.Where(squirrel.Eq{"b.payment_method": filter.PaymentMethod})
	}
	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"b.cashier_id": *filter.CashierID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"b.date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"b.date": *filter.DateTo})
	}

	report := &reports.SalesReport{}

	summaryQ := r.builder.
		Select(
			"COUNT(*) AS total_count",
			"COALESCE(SUM(total_amount), 0) AS total_amount",
		).
		FromSelect(q, "sub")

	summarySQL, summaryArgs, err := summaryQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, summarySQL, summaryArgs...).
		Scan(&report.TotalCount, &report.TotalAmount); err != nil {
		return nil, fmt.Errorf("sales report summary: %w", err)
	}

	byPaymentQ := r.builder.
		Select(
			"payment_method",
			"COUNT(*) AS bill_count",
			"COALESCE(SUM(total_amount), 0) AS total_amount",
		).
		FromSelect(q, "sub").
		GroupBy("payment_method").
		OrderBy("payment_method")

	byPaymentSQL, byPaymentArgs, err := byPaymentQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payment summary: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.ByPayment, byPaymentSQL, byPaymentArgs...); err != nil {
		return nil, fmt.Errorf("sales report by payment: %w", err)
	}

	q = q.OrderBy("b.date DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}

	return report, nil
}

// GetSupplierReport aggregates per-supplier purchase activity.
func (r *ReportRepo) GetSupplierReport(ctx context.Context) (*reports.SupplierReport, error) {
	const query = `
		SELECT
			s.id AS supplier_id,
			s.name AS supplier_name,
			s.code AS supplier_code,
			COUNT(e.id) AS entry_count,
			COALESCE(SUM(e.bill_total), 0) AS total_billed,
			MAX(e.date) AS last_entry_at
		FROM cat_suppliers s
		LEFT JOIN doc_entries e
			ON e.supplier_code = s.code AND e.is_deleted = false
		WHERE s.is_deleted = false
		GROUP BY s.id, s.name, s.code
		ORDER BY s.name`

	report := &reports.SupplierReport{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &report.Rows, query); err != nil {
		return nil, fmt.Errorf("supplier report: %w", err)
	}
	report.TotalCount = len(report.Rows)

	return report, nil
}

// GetCombinedReport bundles the headline numbers of every area.
func (r *ReportRepo) GetCombinedReport(ctx context.Context) (*reports.CombinedReport, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM doc_entries WHERE is_deleted = false),
			(SELECT COALESCE(SUM(bill_total), 0) FROM doc_entries WHERE is_deleted = false),
			(SELECT COALESCE(SUM(final_payable_amount), 0) FROM doc_entries WHERE is_deleted = false),
			(SELECT COUNT(*) FROM cat_stock_items),
			(SELECT COUNT(*) FROM cat_stock_items WHERE quantity <= low_stock),
			(SELECT COALESCE(SUM(purchase_price * quantity), 0) FROM cat_stock_items),
			(SELECT COUNT(*) FROM doc_sale_bills),
			(SELECT COALESCE(SUM(total_amount), 0) FROM doc_sale_bills),
			(SELECT COUNT(*) FROM cat_suppliers WHERE is_deleted = false)`

	report := &reports.CombinedReport{}
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query).Scan(
		&report.EntryCount, &report.TotalBilled, &report.TotalPayable,
		&report.StockItemCount, &report.LowStockCount, &report.TotalStockValue,
		&report.SaleCount, &report.TotalSales,
		&report.SupplierCount,
	)
	if err != nil {
		return nil, fmt.Errorf("combined report: %w", err)
	}

	return report, nil
}

// GetFilterOptions lists the distinct values usable in report filters.
func (r *ReportRepo) GetFilterOptions(ctx context.Context) (*reports.FilterOptions, error) {
	querier := r.txManager.GetQuerier(ctx)
	options := &reports.FilterOptions{}

	queries := []struct {
		sql  string
		dest *[]string
	}{
		{`SELECT DISTINCT category FROM cat_stock_items WHERE category <> '' ORDER BY category`, &options.Categories},
		{`SELECT code FROM cat_suppliers WHERE is_deleted = false ORDER BY code`, &options.SupplierCodes},
		{`SELECT DISTINCT payment_method FROM doc_sale_bills ORDER BY payment_method`, &options.PaymentMethods},
	}

	for _, item := range queries {
		if err := pgxscan.Select(ctx, querier, item.dest, item.sql); err != nil {
			return nil, fmt.Errorf("filter options: %w", err)
		}
	}

	return options, nil
}
