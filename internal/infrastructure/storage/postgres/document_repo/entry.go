package document_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
	"wareflow/internal/domain"
	"wareflow/internal/domain/documents/entry"
	"wareflow/internal/infrastructure/storage/postgres"
)

const (
	entriesTable    = "doc_entries"
	entryLinesTable = "doc_entry_lines"
)

// EntryRepo implements entry.Repository.
type EntryRepo struct {
	*BaseDocumentRepo[*entry.PurchaseEntry]
}

// NewEntryRepo creates a new purchase entry repository.
func NewEntryRepo(txManager *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*entry.PurchaseEntry](
			txManager,
			entriesTable,
			"entry",
			postgres.ExtractDBColumns[entry.PurchaseEntry](),
			func() *entry.PurchaseEntry { return &entry.PurchaseEntry{} },
		),
	}
}

// Create inserts the entry header together with its lines.
func (r *EntryRepo) Create(ctx context.Context, e *entry.PurchaseEntry) error {
	if err := r.BaseDocumentRepo.Create(ctx, e); err != nil {
		return err
	}
	return r.insertLines(ctx, e.ID, e.Lines)
}

// GetByID retrieves an entry with its lines.
func (r *EntryRepo) GetByID(ctx context.Context, entryID id.ID) (*entry.PurchaseEntry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": entryID}).
		Limit(1)

	e, err := r.getOne(ctx, q, entryID.String())
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByEntryNo retrieves an entry by its generated identifier.
func (r *EntryRepo) GetByEntryNo(ctx context.Context, entryNo string) (*entry.PurchaseEntry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"entry_no": entryNo}).
		Limit(1)

	e, err := r.getOne(ctx, q, entryNo)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List retrieves entries with filtering. Lines are not loaded for lists.
func (r *EntryRepo) List(ctx context.Context, filter entry.ListFilter) (domain.ListResult[*entry.PurchaseEntry], error) {
	result := domain.ListResult[*entry.PurchaseEntry]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.OnlyDeleted {
		q = q.Where(squirrel.Eq{"is_deleted": true})
	} else if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"is_deleted": false})
	}

	if filter.SupplierCode != "" {
		q = q.Where(squirrel.Eq{"supplier_code": filter.SupplierCode})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.OnCredit != nil {
		if *filter.OnCredit {
			q = q.Where(squirrel.Gt{"credit_days_limit": 0})
		} else {
			q = q.Where(squirrel.Eq{"credit_days_limit": 0})
		}
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"entry_no": pattern},
			squirrel.ILike{"supplier_bill_no": pattern},
			squirrel.ILike{"supplier_code": pattern},
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

// ExistsBySupplierBillNo checks bill number uniqueness across all
// entries, soft-deleted ones included.
func (r *EntryRepo) ExistsBySupplierBillNo(ctx context.Context, billNo string) (bool, error) {
	const sql = `SELECT 1 FROM doc_entries WHERE supplier_bill_no = $1 LIMIT 1`

	var one int
	err := r.Querier(ctx).QueryRow(ctx, sql, billNo).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by supplier bill no: %w", err)
	}
	return true, nil
}

// MarkDeleted atomically flips is_deleted false -> true.
func (r *EntryRepo) MarkDeleted(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	q := r.Builder().
		Update(entriesTable).
		Set("is_deleted", true).
		Set("deleted_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entryID}).
		Where(squirrel.Eq{"is_deleted": false})

	return r.conditionalUpdate(ctx, q, entryID)
}

// MarkRecovered atomically flips is_deleted true -> false.
func (r *EntryRepo) MarkRecovered(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	q := r.Builder().
		Update(entriesTable).
		Set("is_deleted", false).
		Set("deleted_at", nil).
		Set("recovered_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entryID}).
		Where(squirrel.Eq{"is_deleted": true})

	return r.conditionalUpdate(ctx, q, entryID)
}

// DeletePermanent removes a soft-deleted entry and its lines.
func (r *EntryRepo) DeletePermanent(ctx context.Context, entryID id.ID) (bool, error) {
	// Lines go via ON DELETE CASCADE.
	result, err := r.Querier(ctx).Exec(ctx, `DELETE FROM doc_entries WHERE id = $1 AND is_deleted = true`, entryID)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.exists(ctx, entryID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, apperror.NewNotFound("entry", entryID.String())
		}
		return false, nil
	}

	return true, nil
}

// ListDueForAlert returns entries with credit enabled, alert not yet
// triggered, and a credit window expiring at or before deadline.
func (r *EntryRepo) ListDueForAlert(ctx context.Context, deadline time.Time) ([]*entry.PurchaseEntry, error) {
	q := r.baseSelect().
		Where(squirrel.Gt{"credit_days_limit": 0}).
		Where(squirrel.Eq{"alert_triggered": false}).
		Where(squirrel.Expr("date + make_interval(days => credit_days_limit) <= ?", deadline)).
		OrderBy("date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*entry.PurchaseEntry
	if err := pgxscan.Select(ctx, r.Querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list due for alert: %w", err)
	}

	return entries, nil
}

// MarkAlertTriggered flips alert_triggered false -> true.
func (r *EntryRepo) MarkAlertTriggered(ctx context.Context, entryID id.ID) (bool, error) {
	q := r.Builder().
		Update(entriesTable).
		Set("alert_triggered", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entryID}).
		Where(squirrel.Eq{"alert_triggered": false})

	return r.conditionalUpdate(ctx, q, entryID)
}

func (r *EntryRepo) insertLines(ctx context.Context, entryID id.ID, lines []entry.LineItem) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(entryLinesTable).
		Columns(
			"line_id", "entry_id", "line_no", "name", "category",
			"quantity", "purchase_price", "margin_percentage", "selling_price", "total_cost",
			"identifier_code", "shelf", "low_stock",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, entryID, line.LineNo, line.Name, line.Category,
			line.Quantity, line.PurchasePrice, line.MarginPercentage, line.SellingPrice, line.TotalCost,
			line.IdentifierCode, line.Shelf, line.LowStock,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry lines: %w", err)
	}

	return nil
}

func (r *EntryRepo) loadLines(ctx context.Context, e *entry.PurchaseEntry) error {
	q := r.Builder().
		Select(
			"line_id", "entry_id", "line_no", "name", "category",
			"quantity", "purchase_price", "margin_percentage", "selling_price", "total_cost",
			"identifier_code", "shelf", "low_stock",
		).
		From(entryLinesTable).
		Where(squirrel.Eq{"entry_id": e.ID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &e.Lines, sql, args...); err != nil {
		return fmt.Errorf("load entry lines: %w", err)
	}

	return nil
}
