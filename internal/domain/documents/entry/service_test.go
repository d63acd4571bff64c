package entry

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/id"
	"wareflow/internal/core/security"
	"wareflow/internal/domain"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/domain/catalogs/supplier"
	"wareflow/pkg/numerator"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEntryRepo struct {
	byID      map[id.ID]*PurchaseEntry
	byBillNo  map[string]*PurchaseEntry
	createErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{
		byID:     make(map[id.ID]*PurchaseEntry),
		byBillNo: make(map[string]*PurchaseEntry),
	}
}

func (r *fakeEntryRepo) Create(ctx context.Context, e *PurchaseEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[e.ID] = e
	r.byBillNo[e.SupplierBillNo] = e
	return nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*PurchaseEntry, error) {
	e, ok := r.byID[entryID]
	if !ok {
		return nil, apperror.NewNotFound("entry", entryID.String())
	}
	return e, nil
}

func (r *fakeEntryRepo) GetByEntryNo(ctx context.Context, entryNo string) (*PurchaseEntry, error) {
	for _, e := range r.byID {
		if e.EntryNo == entryNo {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("entry", entryNo)
}

func (r *fakeEntryRepo) Update(ctx context.Context, e *PurchaseEntry) error {
	r.byID[e.ID] = e
	return nil
}

func (r *fakeEntryRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*PurchaseEntry], error) {
	var items []*PurchaseEntry
	for _, e := range r.byID {
		items = append(items, e)
	}
	return domain.ListResult[*PurchaseEntry]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeEntryRepo) ExistsBySupplierBillNo(ctx context.Context, billNo string) (bool, error) {
	_, ok := r.byBillNo[billNo]
	return ok, nil
}

func (r *fakeEntryRepo) MarkDeleted(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	e, ok := r.byID[entryID]
	if !ok {
		return false, apperror.NewNotFound("entry", entryID.String())
	}
	if e.IsDeleted {
		return false, nil
	}
	e.IsDeleted = true
	e.DeletedAt = &at
	return true, nil
}

func (r *fakeEntryRepo) MarkRecovered(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	e, ok := r.byID[entryID]
	if !ok {
		return false, apperror.NewNotFound("entry", entryID.String())
	}
	if !e.IsDeleted {
		return false, nil
	}
	e.IsDeleted = false
	e.DeletedAt = nil
	e.RecoveredAt = &at
	return true, nil
}

func (r *fakeEntryRepo) DeletePermanent(ctx context.Context, entryID id.ID) (bool, error) {
	e, ok := r.byID[entryID]
	if !ok {
		return false, apperror.NewNotFound("entry", entryID.String())
	}
	if !e.IsDeleted {
		return false, nil
	}
	delete(r.byID, entryID)
	delete(r.byBillNo, e.SupplierBillNo)
	return true, nil
}

func (r *fakeEntryRepo) ListDueForAlert(ctx context.Context, deadline time.Time) ([]*PurchaseEntry, error) {
	return nil, nil
}

func (r *fakeEntryRepo) MarkAlertTriggered(ctx context.Context, entryID id.ID) (bool, error) {
	return false, nil
}

type fakeSupplierRepo struct {
	byCode map[string]*supplier.Supplier
	bills  []supplier.BillRef
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{byCode: make(map[string]*supplier.Supplier)}
}

func (r *fakeSupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	r.byCode[s.Code] = s
	return nil
}

func (r *fakeSupplierRepo) GetByID(ctx context.Context, sid id.ID) (*supplier.Supplier, error) {
	for _, s := range r.byCode {
		if s.ID == sid {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", sid.String())
}

func (r *fakeSupplierRepo) GetByCode(ctx context.Context, code string) (*supplier.Supplier, error) {
	s, ok := r.byCode[code]
	if !ok {
		return nil, apperror.NewNotFound("supplier", code)
	}
	return s, nil
}

func (r *fakeSupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error { return nil }

func (r *fakeSupplierRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*supplier.Supplier], error) {
	return domain.ListResult[*supplier.Supplier]{}, nil
}

func (r *fakeSupplierRepo) Exists(ctx context.Context, sid id.ID) (bool, error) { return true, nil }

func (r *fakeSupplierRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *fakeSupplierRepo) AppendBillRef(ctx context.Context, ref *supplier.BillRef) error {
	r.bills = append(r.bills, *ref)
	return nil
}

func (r *fakeSupplierRepo) ListBillRefs(ctx context.Context, sid id.ID) ([]supplier.BillRef, error) {
	return r.bills, nil
}

type fakeProductRepo struct {
	items map[string]*product.StockItem
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{items: make(map[string]*product.StockItem)}
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

type fakeAuditRepo struct {
	records []audit.Record
}

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

// seqRow satisfies pgx.Row for the numerator fake.
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

// --- helpers ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	svc       *Service
	entries   *fakeEntryRepo
	suppliers *fakeSupplierRepo
	products  *fakeProductRepo
	auditRepo *fakeAuditRepo
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	entries := newFakeEntryRepo()
	suppliers := newFakeSupplierRepo()
	products := newFakeProductRepo()
	auditRepo := &fakeAuditRepo{}

	auditor := audit.NewService(auditRepo, fakeActorChecker{})
	num := numerator.New(&seqQuerier{})
	svc := NewService(entries, suppliers, products, num, fakeTxManager{}, auditor)

	require.NoError(t, suppliers.Create(context.Background(), supplier.New("Acme Traders", "ACME")))

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{
		ID:       id.New().String(),
		Username: "clerk",
		Role:     security.RoleStaff,
	})

	return &fixture{
		svc:       svc,
		entries:   entries,
		suppliers: suppliers,
		products:  products,
		auditRepo: auditRepo,
		ctx:       ctx,
	}
}

func validInput() CreateInput {
	return CreateInput{
		SupplierBillNo:  "INV-555",
		SupplierCode:    "ACME",
		CreditDaysLimit: 15,
		Lines: []LineInput{
			{
				Name:             "Rice 5kg",
				Category:         "grocery",
				Quantity:         10,
				PurchasePrice:    dec("100"),
				MarginPercentage: decPtr("20"),
			},
		},
	}
}

// --- tests ---

func TestCreate_DerivesPricingAndTotals(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, "WF-0001", e.EntryNo)
	require.Len(t, e.Lines, 1)

	line := e.Lines[0]
	assert.True(t, line.SellingPrice.Equal(dec("120")), "selling price: %s", line.SellingPrice)
	assert.True(t, line.TotalCost.Equal(dec("1000")))
	assert.True(t, e.BillTotal.Equal(dec("1000")))
	assert.True(t, e.FinalPayableAmount.Equal(dec("1000")))
	assert.Len(t, line.IdentifierCode, 8)
}

func TestCreate_CreatesStockItemsWithDefaults(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	item, err := f.products.GetByIdentifier(f.ctx, e.Lines[0].IdentifierCode)
	require.NoError(t, err)

	assert.Equal(t, "WF-0001", item.EntryNo)
	assert.EqualValues(t, 10, item.Quantity)
	assert.EqualValues(t, 0, item.SoldQty)
	assert.EqualValues(t, product.DefaultLowStock, item.LowStock)
	assert.Equal(t, product.DefaultShelf, item.Shelf)
}

func TestCreate_AppendsSupplierBillHistory(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	require.Len(t, f.suppliers.bills, 1)
	assert.Equal(t, e.SupplierBillNo, f.suppliers.bills[0].BillNo)
	assert.Equal(t, e.EntryNo, f.suppliers.bills[0].EntryNo)
}

func TestCreate_AppliesDiscount(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.DiscountType = "percentage"
	in.DiscountValue = decPtr("10")

	e, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)

	assert.True(t, e.FinalPayableAmount.Equal(dec("900")), "final: %s", e.FinalPayableAmount)
}

func TestCreate_DiscountClampedAtZero(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Lines[0].Quantity = 1
	in.Lines[0].PurchasePrice = dec("40")
	in.DiscountType = "amount"
	in.DiscountValue = decPtr("50")

	e, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)

	assert.True(t, e.FinalPayableAmount.Equal(decimal.Zero))
}

func TestCreate_UnknownSupplier(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.SupplierCode = "ZZZZ"

	_, err := f.svc.Create(f.ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_DuplicateBillNo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, validInput())
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_DuplicateBillNoIncludesSoftDeleted(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(f.ctx, e.ID))

	_, err = f.svc.Create(f.ctx, validInput())
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_EmptyLines(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Lines = nil

	_, err := f.svc.Create(f.ctx, in)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_LineRequiresMarginOrSellingPrice(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Lines[0].MarginPercentage = nil
	in.Lines[0].SellingPrice = nil

	_, err := f.svc.Create(f.ctx, in)
	require.Error(t, err)
}

func TestCreate_NoActor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), validInput())
	require.Error(t, err)
}

func TestLifecycle_SoftDeleteThenRecover(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(f.ctx, e.ID))

	stored, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.NotNil(t, stored.DeletedAt)

	require.NoError(t, f.svc.Recover(f.ctx, e.ID))

	stored, err = f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)
	assert.Nil(t, stored.DeletedAt)
	assert.NotNil(t, stored.RecoveredAt)
}

func TestLifecycle_SoftDeleteTwice(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(f.ctx, e.ID))

	err = f.svc.SoftDelete(f.ctx, e.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidStateTransition, appErr.Code)
	assert.Equal(t, apperror.ReasonAlreadyDeleted, appErr.Details["reason"])
}

func TestLifecycle_RecoverActiveEntry(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	err = f.svc.Recover(f.ctx, e.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ReasonNotDeleted, appErr.Details["reason"])
}

func TestLifecycle_PermanentDeleteRequiresSoftDelete(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	err = f.svc.PermanentDelete(f.ctx, e.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ReasonMustSoftDeleteFirst, appErr.Details["reason"])

	require.NoError(t, f.svc.SoftDelete(f.ctx, e.ID))
	require.NoError(t, f.svc.PermanentDelete(f.ctx, e.ID))

	_, err = f.svc.GetByID(f.ctx, e.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLifecycle_StockItemsSurviveSoftDelete(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)
	code := e.Lines[0].IdentifierCode

	require.NoError(t, f.svc.SoftDelete(f.ctx, e.ID))

	_, err = f.products.GetByIdentifier(f.ctx, code)
	assert.NoError(t, err)
}

func TestUpdate_RecomputesPayable(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	dt := "amount"
	updated, err := f.svc.Update(f.ctx, e.ID, UpdateInput{
		DiscountType:  &dt,
		DiscountValue: decPtr("200"),
	})
	require.NoError(t, err)

	assert.True(t, updated.FinalPayableAmount.Equal(dec("800")), "final: %s", updated.FinalPayableAmount)
}

func TestCreate_Audited(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, validInput())
	require.NoError(t, err)

	require.NotEmpty(t, f.auditRepo.records)
	rec := f.auditRepo.records[len(f.auditRepo.records)-1]
	assert.Equal(t, audit.TypeEntry, rec.Type)
	assert.Equal(t, "create", rec.Action)
	assert.Equal(t, "clerk", rec.PerformedBy)
}
