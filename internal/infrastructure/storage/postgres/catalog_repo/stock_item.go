package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"wareflow/internal/core/apperror"
	"wareflow/internal/domain"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/infrastructure/storage/postgres"
)

const stockItemTable = "cat_stock_items"

// StockItemRepo implements product.Repository.
type StockItemRepo struct {
	*BaseCatalogRepo[*product.StockItem]

	batch *postgres.BatchInserter
}

// NewStockItemRepo creates a new stock item repository.
func NewStockItemRepo(txManager *postgres.TxManager) *StockItemRepo {
	return &StockItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.StockItem](
			txManager,
			stockItemTable,
			"stock item",
			postgres.ExtractDBColumns[product.StockItem](),
			func() *product.StockItem { return &product.StockItem{} },
		),
		batch: postgres.NewBatchInserter(txManager),
	}
}

// GetByIdentifier retrieves a stock item by its QR token.
func (r *StockItemRepo) GetByIdentifier(ctx context.Context, identifierCode string) (*product.StockItem, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"identifier_code": identifierCode}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock item", identifierCode)
		}
		return nil, err
	}
	return item, nil
}

// GetByCode is the identifier-code lookup; stock items have no separate code.
func (r *StockItemRepo) GetByCode(ctx context.Context, code string) (*product.StockItem, error) {
	return r.GetByIdentifier(ctx, code)
}

// ExistsByCode checks if a stock item with the given identifier code exists.
func (r *StockItemRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(stockItemTable).
		Where(squirrel.Eq{"identifier_code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by code: %w", err)
	}

	return true, nil
}

// List retrieves stock items. Items have no soft-delete state, so the
// lifecycle filter from the base repo does not apply here.
func (r *StockItemRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.StockItem], error) {
	result := domain.ListResult[*product.StockItem]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"category": pattern},
			squirrel.ILike{"identifier_code": pattern},
		})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
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
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// ApplyDelta atomically changes on-hand quantity by delta. The WHERE
// guard makes overdraft impossible without taking a row lock first.
func (r *StockItemRepo) ApplyDelta(ctx context.Context, identifierCode string, delta int64, saleDriven bool) (int64, error) {
	const sql = `
		UPDATE cat_stock_items
		SET quantity = quantity + $2,
		    sold_qty = sold_qty + CASE WHEN $3 THEN -$2 ELSE 0 END,
		    updated_at = now()
		WHERE identifier_code = $1 AND quantity + $2 >= 0
		RETURNING quantity`

	var quantity int64
	err := r.Querier(ctx).QueryRow(ctx, sql, identifierCode, delta, saleDriven).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the item does not exist or the delta would overdraw it.
		available, readErr := r.currentQuantity(ctx, identifierCode)
		if readErr != nil {
			return 0, readErr
		}
		if saleDriven {
			return 0, apperror.NewInsufficientStock(identifierCode, -delta, available)
		}
		return 0, apperror.NewInvalidAdjustment("adjustment would make stock quantity negative").
			WithDetail("identifierCode", identifierCode).
			WithDetail("requested", -delta).
			WithDetail("available", available)
	}
	if err != nil {
		return 0, fmt.Errorf("apply delta: %w", err)
	}

	return quantity, nil
}

// DeleteByIdentifier removes a stock item permanently.
func (r *StockItemRepo) DeleteByIdentifier(ctx context.Context, identifierCode string) error {
	const sql = `DELETE FROM cat_stock_items WHERE identifier_code = $1`

	tag, err := r.Querier(ctx).Exec(ctx, sql, identifierCode)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", identifierCode)
	}
	return nil
}

func (r *StockItemRepo) currentQuantity(ctx context.Context, identifierCode string) (int64, error) {
	const sql = `SELECT quantity FROM cat_stock_items WHERE identifier_code = $1`

	var quantity int64
	err := r.Querier(ctx).QueryRow(ctx, sql, identifierCode).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("stock item", identifierCode)
	}
	if err != nil {
		return 0, fmt.Errorf("read quantity: %w", err)
	}
	return quantity, nil
}

// CreateBatch inserts stock items in bulk using the COPY protocol.
// Must run inside a transaction.
func (r *StockItemRepo) CreateBatch(ctx context.Context, items []*product.StockItem) error {
	if len(items) == 0 {
		return nil
	}

	columns := []string{
		"id", "version", "created_at", "updated_at",
		"name", "category", "identifier_code", "entry_no",
		"purchase_price", "margin_percentage", "selling_price",
		"quantity", "sold_qty", "low_stock", "shelf",
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.ID, item.Version, item.CreatedAt, item.UpdatedAt,
			item.Name, item.Category, item.IdentifierCode, item.EntryNo,
			item.PurchasePrice, item.MarginPercentage, item.SellingPrice,
			item.Quantity, item.SoldQty, item.LowStock, item.Shelf,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, stockItemTable, columns, rows); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("stock item", "identifierCode", "")
		}
		return fmt.Errorf("batch insert stock items: %w", err)
	}

	return nil
}

// ListLowStock returns items at or below their reorder threshold.
func (r *StockItemRepo) ListLowStock(ctx context.Context) ([]*product.StockItem, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("quantity <= low_stock")).
		OrderBy("quantity ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.StockItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return items, nil
}

// ListCategories returns the distinct categories in use.
func (r *StockItemRepo) ListCategories(ctx context.Context) ([]string, error) {
	const sql = `SELECT DISTINCT category FROM cat_stock_items WHERE category <> '' ORDER BY category`

	var categories []string
	if err := pgxscan.Select(ctx, r.Querier(ctx), &categories, sql); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}
