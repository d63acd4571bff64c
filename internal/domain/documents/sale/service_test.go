package sale

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
	"wareflow/internal/core/security"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/pkg/numerator"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSaleRepo struct {
	bills map[id.ID]*SaleBill

	// takenBillNos simulates rows the counter does not know about yet
	takenBillNos map[string]bool
}

func (r *fakeSaleRepo) Create(ctx context.Context, b *SaleBill) error {
	if r.takenBillNos[b.BillNo] {
		return apperror.NewDuplicate("sale", "billNo", b.BillNo)
	}
	for _, existing := range r.bills {
		if existing.BillNo == b.BillNo {
			return apperror.NewDuplicate("sale", "billNo", b.BillNo)
		}
	}
	r.bills[b.ID] = b
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, billID id.ID) (*SaleBill, error) {
	b, ok := r.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("sale", billID.String())
	}
	return b, nil
}

func (r *fakeSaleRepo) GetByBillNo(ctx context.Context, billNo string) (*SaleBill, error) {
	for _, b := range r.bills {
		if b.BillNo == billNo {
			return b, nil
		}
	}
	return nil, apperror.NewNotFound("sale", billNo)
}

func (r *fakeSaleRepo) Update(ctx context.Context, b *SaleBill) error {
	if _, ok := r.bills[b.ID]; !ok {
		return apperror.NewNotFound("sale", b.ID.String())
	}
	r.bills[b.ID] = b
	return nil
}

func (r *fakeSaleRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*SaleBill], error) {
	return domain.ListResult[*SaleBill]{}, nil
}

type fakeProductRepo struct {
	items map[string]*product.StockItem
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.StockItem) error {
	r.items[p.IdentifierCode] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, pid id.ID) (*product.StockItem, error) {
	for _, p := range r.items {
		if p.ID == pid {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", pid.String())
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*product.StockItem, error) {
	return r.GetByIdentifier(ctx, code)
}

func (r *fakeProductRepo) GetByIdentifier(ctx context.Context, code string) (*product.StockItem, error) {
	p, ok := r.items[code]
	if !ok {
		return nil, apperror.NewNotFound("product", code)
	}
	return p, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.StockItem) error { return nil }

func (r *fakeProductRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*product.StockItem], error) {
	return domain.ListResult[*product.StockItem]{}, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, pid id.ID) (bool, error) { return true, nil }

func (r *fakeProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.items[code]
	return ok, nil
}

func (r *fakeProductRepo) ApplyDelta(ctx context.Context, code string, delta int64, saleDriven bool) (int64, error) {
	p, ok := r.items[code]
	if !ok {
		return 0, apperror.NewNotFound("product", code)
	}
	if p.Quantity+delta < 0 {
		if saleDriven {
			return 0, apperror.NewInsufficientStock(code, -delta, p.Quantity)
		}
		return 0, apperror.NewInvalidAdjustment("adjustment would make stock quantity negative").
			WithDetail("identifierCode", code).
			WithDetail("requested", -delta).
			WithDetail("available", p.Quantity)
	}
	p.Quantity += delta
	if saleDriven && delta < 0 {
		p.SoldQty += -delta
	}
	return p.Quantity, nil
}

func (r *fakeProductRepo) CreateBatch(ctx context.Context, items []*product.StockItem) error {
	for _, p := range items {
		r.items[p.IdentifierCode] = p
	}
	return nil
}

func (r *fakeProductRepo) DeleteByIdentifier(ctx context.Context, code string) error {
	delete(r.items, code)
	return nil
}

func (r *fakeProductRepo) ListLowStock(ctx context.Context) ([]*product.StockItem, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListCategories(ctx context.Context) ([]string, error) { return nil, nil }

type fakeAuditRepo struct{ records []audit.Record }

func (r *fakeAuditRepo) Append(ctx context.Context, rec *audit.Record) error {
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeAuditRepo) Query(ctx context.Context, f audit.Filter) ([]audit.Record, error) {
	return r.records, nil
}

type fakeActorChecker struct{}

func (fakeActorChecker) ActorExists(ctx context.Context, actorID id.ID) (bool, error) {
	return true, nil
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct{ counters map[string]int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if q.counters == nil {
		q.counters = make(map[string]int64)
	}
	key, _ := args[0].(string)
	q.counters[key]++
	return seqRow{val: q.counters[key]}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	svc      *Service
	bills    *fakeSaleRepo
	products *fakeProductRepo
	audits   *fakeAuditRepo
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bills := &fakeSaleRepo{bills: make(map[id.ID]*SaleBill)}
	products := &fakeProductRepo{items: make(map[string]*product.StockItem)}
	audits := &fakeAuditRepo{}

	auditor := audit.NewService(audits, fakeActorChecker{})
	svc := NewService(bills, products, numerator.New(&seqQuerier{}), fakeTxManager{}, auditor)

	item := &product.StockItem{
		BaseEntity:     entity.NewBaseEntity(),
		Name:           "Rice 5kg",
		Category:       "grocery",
		IdentifierCode: "A1B2C3D4",
		EntryNo:        "WF-0001",
		SellingPrice:   dec("120"),
		Quantity:       5,
		SoldQty:        0,
		LowStock:       10,
		Shelf:          "A-13",
	}
	require.NoError(t, products.Create(context.Background(), item))

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{
		ID:       id.New().String(),
		Username: "cashier1",
		Role:     security.RoleCashier,
	})

	return &fixture{svc: svc, bills: bills, products: products, audits: audits, ctx: ctx}
}

func TestCreate_DeductsStockAndAdvancesSoldQty(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bill-00001", b.BillNo)

	item, err := f.products.GetByIdentifier(f.ctx, "A1B2C3D4")
	require.NoError(t, err)
	assert.EqualValues(t, 2, item.Quantity)
	assert.EqualValues(t, 3, item.SoldQty)
}

func TestCreate_SnapshotsPriceAndName(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCard,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 2}},
	})
	require.NoError(t, err)

	require.Len(t, b.Lines, 1)
	line := b.Lines[0]
	assert.Equal(t, "Rice 5kg", line.Name)
	assert.True(t, line.Price.Equal(dec("120")))
	assert.True(t, line.Total.Equal(dec("240")))
	assert.True(t, b.TotalAmount.Equal(dec("240")))

	// Later price changes must not affect the recorded bill
	item, _ := f.products.GetByIdentifier(f.ctx, "A1B2C3D4")
	item.SellingPrice = dec("999")

	stored, err := f.svc.GetByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].Price.Equal(dec("120")))
}

func TestCreate_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 6}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Failed sale must not move any counters
	item, _ := f.products.GetByIdentifier(f.ctx, "A1B2C3D4")
	assert.EqualValues(t, 5, item.Quantity)
	assert.EqualValues(t, 0, item.SoldQty)
}

func TestCreate_SecondSaleAgainstDepletedStock(t *testing.T) {
	f := newFixture(t)

	in := CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 3}},
	}

	_, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestCreate_InvalidPaymentMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: "barter",
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_EmptyLines(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{PaymentMethod: PayCash})
	require.Error(t, err)
}

func TestCreate_UnknownIdentifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "ZZZZZZZZ", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_Audited(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayOnline,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, f.audits.records)
	rec := f.audits.records[0]
	assert.Equal(t, audit.TypeSales, rec.Type)
	assert.Equal(t, "cashier1", rec.PerformedBy)
}

func TestUpdate_CancelIsDataOnly(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 3}},
	})
	require.NoError(t, err)

	canceled := true
	reason := "customer returned goods"
	updated, err := f.svc.Update(f.ctx, b.ID, UpdateInput{
		IsCanceled:   &canceled,
		CancelReason: &reason,
	})
	require.NoError(t, err)

	assert.True(t, updated.IsCanceled)
	assert.Equal(t, reason, updated.CancelReason)
	assert.Equal(t, b.BillNo, updated.BillNo)

	// Cancellation never restocks
	item, err := f.products.GetByIdentifier(f.ctx, "A1B2C3D4")
	require.NoError(t, err)
	assert.EqualValues(t, 2, item.Quantity)
	assert.EqualValues(t, 3, item.SoldQty)
}

func TestUpdate_UnknownBill(t *testing.T) {
	f := newFixture(t)

	canceled := true
	_, err := f.svc.Update(f.ctx, id.New(), UpdateInput{IsCanceled: &canceled})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RetriesOnBillNoCollision(t *testing.T) {
	f := newFixture(t)
	f.bills.takenBillNos = map[string]bool{"Bill-00001": true}

	b, err := f.svc.Create(f.ctx, CreateInput{
		PaymentMethod: PayCash,
		Lines:         []LineInput{{IdentifierCode: "A1B2C3D4", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bill-00002", b.BillNo)
	require.Len(t, b.Lines, 1, "retry must rebuild lines, not append to them")

	stored, err := f.svc.GetByBillNo(f.ctx, "Bill-00002")
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
}
