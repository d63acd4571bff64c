// Package entry provides the PurchaseEntry document and its lifecycle.
// An entry records one supplier invoice; its line items seed stock items.
package entry

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
	"wareflow/internal/domain/pricing"
)

// PurchaseEntry represents one supplier invoice.
type PurchaseEntry struct {
	entity.BaseEntity

	// EntryNo is the generated identifier (WF-0001), immutable after creation
	EntryNo string `db:"entry_no" json:"entryNo"`

	// SupplierBillNo is the caller-supplied invoice number, globally unique
	// across all entries including soft-deleted ones, immutable
	SupplierBillNo string `db:"supplier_bill_no" json:"supplierBillNo"`

	// SupplierCode references an existing supplier
	SupplierCode string `db:"supplier_code" json:"supplierCode"`

	// Date is the business date of the purchase
	Date time.Time `db:"date" json:"date"`

	// CreditDaysLimit is days until the bill is considered due (0 = no credit)
	CreditDaysLimit int `db:"credit_days_limit" json:"creditDaysLimit"`

	// AlertTriggered flips false -> true once, never back
	AlertTriggered bool `db:"alert_triggered" json:"alertTriggered"`

	// Totals
	BillTotal          decimal.Decimal  `db:"bill_total" json:"billTotal"`
	DiscountType       string           `db:"discount_type" json:"discountType,omitempty"`
	DiscountValue      *decimal.Decimal `db:"discount_value" json:"discountValue,omitempty"`
	FinalPayableAmount decimal.Decimal  `db:"final_payable_amount" json:"finalPayableAmount"`

	// Lifecycle
	IsDeleted   bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	RecoveredAt *time.Time `db:"recovered_at" json:"recoveredAt,omitempty"`

	// Actor snapshot taken at creation
	CreatedByID   id.ID  `db:"created_by_id" json:"userId"`
	CreatedByName string `db:"created_by_name" json:"username"`

	// Table part
	Lines []LineItem `db:"-" json:"items"`
}

// LineItem is one purchased product line. Prices are derived at creation
// (see pricing.Derive) and duplicated into a standalone StockItem.
type LineItem struct {
	LineID  id.ID `db:"line_id" json:"-"`
	EntryID id.ID `db:"entry_id" json:"-"`
	LineNo  int   `db:"line_no" json:"-"`

	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`

	Quantity         int64           `db:"quantity" json:"quantity"`
	PurchasePrice    decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	MarginPercentage decimal.Decimal `db:"margin_percentage" json:"marginPercentage"`
	SellingPrice     decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	TotalCost        decimal.Decimal `db:"total_cost" json:"totalCost"`

	// IdentifierCode is the generated 8-character QR token
	IdentifierCode string `db:"identifier_code" json:"identifierCode"`

	Shelf    string `db:"shelf" json:"shelf"`
	LowStock int64  `db:"low_stock" json:"lowStock"`
}

// Validate implements entity.Validatable interface.
func (e *PurchaseEntry) Validate(ctx context.Context) error {
	if strings.TrimSpace(e.SupplierBillNo) == "" {
		return apperror.NewValidation("supplier bill number is required").
			WithDetail("field", "supplierBillNo")
	}
	if strings.TrimSpace(e.SupplierCode) == "" {
		return apperror.NewValidation("supplier code is required").
			WithDetail("field", "supplierCode")
	}
	if e.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if e.CreditDaysLimit < 0 {
		return apperror.NewValidation("credit days limit cannot be negative").
			WithDetail("field", "creditDaysLimit")
	}
	if len(e.Lines) == 0 {
		return apperror.NewValidation("an entry requires at least one line item").
			WithDetail("field", "items")
	}
	if e.DiscountValue != nil && !pricing.IsValidDiscountType(e.DiscountType) {
		return apperror.NewValidation("discount type must be percentage or amount").
			WithDetail("field", "discountType").
			WithDetail("value", e.DiscountType)
	}

	for i, line := range e.Lines {
		if err := line.validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("line", i+1)
			}
			return err
		}
	}

	return nil
}

func (l *LineItem) validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return apperror.NewValidation("line item name is required").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(l.Category) == "" {
		return apperror.NewValidation("line item category is required").
			WithDetail("field", "category")
	}
	if l.Quantity <= 0 {
		return apperror.NewValidation("line item quantity must be positive").
			WithDetail("field", "quantity")
	}
	if l.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	return nil
}

// RecalculateTotals recomputes billTotal and finalPayableAmount from lines.
func (e *PurchaseEntry) RecalculateTotals() {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.TotalCost)
	}
	e.BillTotal = total
	e.FinalPayableAmount = pricing.ApplyDiscount(total, e.DiscountType, e.DiscountValue)
}

// DueDate returns when the credit window expires.
func (e *PurchaseEntry) DueDate() time.Time {
	return e.Date.AddDate(0, 0, e.CreditDaysLimit)
}
