package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"wareflow/internal/core/id"
	"wareflow/internal/domain/catalogs/supplier"
	"wareflow/internal/infrastructure/storage/postgres"
)

const (
	supplierTable     = "cat_suppliers"
	supplierBillTable = "cat_supplier_bills"
)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*supplier.Supplier](
			txManager,
			supplierTable,
			"supplier",
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// AppendBillRef appends one record to the supplier's bill history.
func (r *SupplierRepo) AppendBillRef(ctx context.Context, ref *supplier.BillRef) error {
	q := r.Builder().
		Insert(supplierBillTable).
		Columns("id", "supplier_id", "bill_no", "entry_no", "date").
		Values(ref.ID, ref.SupplierID, ref.BillNo, ref.EntryNo, ref.Date)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append bill ref: %w", err)
	}

	return nil
}

// ListBillRefs returns the supplier's bill history, newest first.
func (r *SupplierRepo) ListBillRefs(ctx context.Context, supplierID id.ID) ([]supplier.BillRef, error) {
	q := r.Builder().
		Select("id", "supplier_id", "bill_no", "entry_no", "date").
		From(supplierBillTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		OrderBy("date DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var refs []supplier.BillRef
	if err := pgxscan.Select(ctx, r.Querier(ctx), &refs, sql, args...); err != nil {
		return nil, fmt.Errorf("list bill refs: %w", err)
	}

	return refs, nil
}
