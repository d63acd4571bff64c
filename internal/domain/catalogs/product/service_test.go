package product

import (
	"context"
	"testing"

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
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStockRepo struct {
	items map[string]*StockItem
}

func (r *fakeStockRepo) Create(ctx context.Context, p *StockItem) error {
	r.items[p.IdentifierCode] = p
	return nil
}

func (r *fakeStockRepo) GetByID(ctx context.Context, pid id.ID) (*StockItem, error) {
	for _, p := range r.items {
		if p.ID == pid {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("stock item", pid.String())
}

func (r *fakeStockRepo) GetByCode(ctx context.Context, code string) (*StockItem, error) {
	return r.GetByIdentifier(ctx, code)
}

func (r *fakeStockRepo) GetByIdentifier(ctx context.Context, code string) (*StockItem, error) {
	p, ok := r.items[code]
	if !ok {
		return nil, apperror.NewNotFound("stock item", code)
	}
	return p, nil
}

func (r *fakeStockRepo) Update(ctx context.Context, p *StockItem) error {
	if _, ok := r.items[p.IdentifierCode]; !ok {
		return apperror.NewNotFound("stock item", p.IdentifierCode)
	}
	r.items[p.IdentifierCode] = p
	return nil
}

func (r *fakeStockRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*StockItem], error) {
	return domain.ListResult[*StockItem]{}, nil
}

func (r *fakeStockRepo) Exists(ctx context.Context, pid id.ID) (bool, error) { return true, nil }

func (r *fakeStockRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.items[code]
	return ok, nil
}

func (r *fakeStockRepo) ApplyDelta(ctx context.Context, code string, delta int64, saleDriven bool) (int64, error) {
	p, ok := r.items[code]
	if !ok {
		return 0, apperror.NewNotFound("stock item", code)
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

func (r *fakeStockRepo) CreateBatch(ctx context.Context, items []*StockItem) error {
	for _, p := range items {
		r.items[p.IdentifierCode] = p
	}
	return nil
}

func (r *fakeStockRepo) DeleteByIdentifier(ctx context.Context, code string) error {
	if _, ok := r.items[code]; !ok {
		return apperror.NewNotFound("stock item", code)
	}
	delete(r.items, code)
	return nil
}

func (r *fakeStockRepo) ListLowStock(ctx context.Context) ([]*StockItem, error) { return nil, nil }

func (r *fakeStockRepo) ListCategories(ctx context.Context) ([]string, error) { return nil, nil }

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

type fixture struct {
	svc    *Service
	repo   *fakeStockRepo
	audits *fakeAuditRepo
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &fakeStockRepo{items: make(map[string]*StockItem)}
	audits := &fakeAuditRepo{}
	svc := NewService(repo, fakeTxManager{}, audit.NewService(audits, fakeActorChecker{}))

	item := &StockItem{
		BaseEntity:     entity.NewBaseEntity(),
		Name:           "Rice 5kg",
		Category:       "grocery",
		IdentifierCode: "A1B2C3D4",
		EntryNo:        "WF-0001",
		SellingPrice:   decimal.RequireFromString("120"),
		Quantity:       5,
		LowStock:       10,
		Shelf:          "A-13",
	}
	require.NoError(t, repo.Create(context.Background(), item))

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{
		ID:       id.New().String(),
		Username: "manager1",
		Role:     security.RoleStaff,
	})

	return &fixture{svc: svc, repo: repo, audits: audits, ctx: ctx}
}

func TestAdjust_IncreaseAddsQuantityOnly(t *testing.T) {
	f := newFixture(t)

	updated, err := f.svc.Adjust(f.ctx, Adjustment{
		IdentifierCode: "A1B2C3D4",
		Type:           AdjustIncrease,
		Quantity:       7,
		Reason:         "stock count correction",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated)

	item := f.repo.items["A1B2C3D4"]
	assert.Equal(t, int64(12), item.Quantity)
	assert.Equal(t, int64(0), item.SoldQty, "manual adjustments never touch the sold counter")
}

func TestAdjust_DecreaseRemovesQuantity(t *testing.T) {
	f := newFixture(t)

	updated, err := f.svc.Adjust(f.ctx, Adjustment{
		IdentifierCode: "A1B2C3D4",
		Type:           AdjustDecrease,
		Quantity:       5,
		Reason:         "damaged in storage",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
	assert.Equal(t, int64(0), f.repo.items["A1B2C3D4"].SoldQty)
}

func TestAdjust_OverdrawRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Adjust(f.ctx, Adjustment{
		IdentifierCode: "A1B2C3D4",
		Type:           AdjustDecrease,
		Quantity:       6,
		Reason:         "shrinkage",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidAdjustment, appErr.Code)
	assert.Equal(t, int64(6), appErr.Details["requested"])
	assert.Equal(t, int64(5), appErr.Details["available"])

	assert.Equal(t, int64(5), f.repo.items["A1B2C3D4"].Quantity, "failed adjustment leaves stock unchanged")
	assert.Empty(t, f.audits.records, "failed adjustment is not audited")
}

func TestAdjust_ValidationRejections(t *testing.T) {
	tests := []struct {
		name string
		adj  Adjustment
	}{
		{"zero quantity", Adjustment{IdentifierCode: "A1B2C3D4", Type: AdjustIncrease, Quantity: 0, Reason: "r"}},
		{"negative quantity", Adjustment{IdentifierCode: "A1B2C3D4", Type: AdjustDecrease, Quantity: -3, Reason: "r"}},
		{"blank reason", Adjustment{IdentifierCode: "A1B2C3D4", Type: AdjustIncrease, Quantity: 1, Reason: "   "}},
		{"unknown type", Adjustment{IdentifierCode: "A1B2C3D4", Type: "restock", Quantity: 1, Reason: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Adjust(f.ctx, tt.adj)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidAdjustment, appErr.Code)
			assert.Equal(t, int64(5), f.repo.items["A1B2C3D4"].Quantity)
		})
	}
}

func TestAdjust_UnknownItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Adjust(f.ctx, Adjustment{
		IdentifierCode: "ZZZZZZZZ",
		Type:           AdjustIncrease,
		Quantity:       1,
		Reason:         "found on shelf",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdjust_WritesAuditRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Adjust(f.ctx, Adjustment{
		IdentifierCode: "A1B2C3D4",
		Type:           AdjustDecrease,
		Quantity:       2,
		Reason:         "expired batch",
	})
	require.NoError(t, err)

	require.Len(t, f.audits.records, 1)
	rec := f.audits.records[0]
	assert.Equal(t, audit.TypeStock, rec.Type)
	assert.Equal(t, "adjust", rec.Action)
	assert.Equal(t, "Rice 5kg", rec.Details["productName"])
	assert.Equal(t, "A1B2C3D4", rec.Details["identifierCode"])
	assert.Equal(t, "decrease", rec.Details["adjustmentType"])
	assert.Equal(t, int64(2), rec.Details["quantityChanged"])
	assert.Equal(t, "expired batch", rec.Details["reason"])
}

func TestAdjustmentDelta_SignAgreesWithType(t *testing.T) {
	inc := Adjustment{Type: AdjustIncrease, Quantity: 4}
	dec := Adjustment{Type: AdjustDecrease, Quantity: 4}

	assert.Equal(t, int64(4), inc.Delta())
	assert.Equal(t, int64(-4), dec.Delta())
}

func TestDelete_RemovesItemAndAudits(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Delete(f.ctx, "A1B2C3D4"))

	_, ok := f.repo.items["A1B2C3D4"]
	assert.False(t, ok)

	require.Len(t, f.audits.records, 1)
	rec := f.audits.records[0]
	assert.Equal(t, audit.TypeProduct, rec.Type)
	assert.Equal(t, "delete", rec.Action)
	assert.Equal(t, int64(5), rec.Details["quantity"])
}
