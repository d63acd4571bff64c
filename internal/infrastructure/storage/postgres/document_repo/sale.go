package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"wareflow/internal/core/id"
	"wareflow/internal/domain"
	"wareflow/internal/domain/documents/sale"
	"wareflow/internal/infrastructure/storage/postgres"
)

const (
	saleBillsTable = "doc_sale_bills"
	saleLinesTable = "doc_sale_lines"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.SaleBill]
}

// NewSaleRepo creates a new sale bill repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sale.SaleBill](
			txManager,
			saleBillsTable,
			"sale bill",
			postgres.ExtractDBColumns[sale.SaleBill](),
			func() *sale.SaleBill { return &sale.SaleBill{} },
		),
	}
}

// Create inserts the bill header together with its lines.
func (r *SaleRepo) Create(ctx context.Context, b *sale.SaleBill) error {
	if err := r.BaseDocumentRepo.Create(ctx, b); err != nil {
		return err
	}
	return r.insertLines(ctx, b.ID, b.Lines)
}

// GetByID retrieves a bill with its lines.
func (r *SaleRepo) GetByID(ctx context.Context, billID id.ID) (*sale.SaleBill, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": billID}).
		Limit(1)

	b, err := r.getOne(ctx, q, billID.String())
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByBillNo retrieves a bill by its generated identifier.
func (r *SaleRepo) GetByBillNo(ctx context.Context, billNo string) (*sale.SaleBill, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"bill_no": billNo}).
		Limit(1)

	b, err := r.getOne(ctx, q, billNo)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List retrieves bills with filtering. Lines are not loaded for lists.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.SaleBill], error) {
	result := domain.ListResult[*sale.SaleBill]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.PaymentMethod != "" {
		q = q.Where(squirrel.Eq{"payment_method": filter.PaymentMethod})
	}

	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *filter.CashierID})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"bill_no": pattern},
			squirrel.ILike{"cashier_name": pattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

func (r *SaleRepo) insertLines(ctx context.Context, billID id.ID, lines []sale.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleLinesTable).
		Columns(
			"line_id", "bill_id", "line_no",
			"stock_item_id", "name", "identifier_code",
			"price", "quantity", "total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, billID, line.LineNo,
			line.StockItemID, line.Name, line.IdentifierCode,
			line.Price, line.Quantity, line.Total,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}

	return nil
}

func (r *SaleRepo) loadLines(ctx context.Context, b *sale.SaleBill) error {
	q := r.Builder().
		Select(
			"line_id", "bill_id", "line_no",
			"stock_item_id", "name", "identifier_code",
			"price", "quantity", "total",
		).
		From(saleLinesTable).
		Where(squirrel.Eq{"bill_id": b.ID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &b.Lines, sql, args...); err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}

	return nil
}
