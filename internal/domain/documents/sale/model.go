// Package sale provides the SaleBill document.
// A sale snapshots product prices at the moment of deduction; later price
// changes never rewrite a recorded bill.
package sale

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayOnline PaymentMethod = "online"
)

// IsValidPaymentMethod reports whether m is a known payment method.
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayCash, PayCard, PayOnline:
		return true
	}
	return false
}

// SaleBill represents one sale transaction.
type SaleBill struct {
	entity.BaseEntity

	// BillNo is the generated identifier (Bill-00001), immutable
	BillNo string `db:"bill_no" json:"billNo"`

	Date time.Time `db:"date" json:"date"`

	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`

	// Cashier snapshot taken at sale time
	CashierID   id.ID  `db:"cashier_id" json:"userId"`
	CashierName string `db:"cashier_name" json:"username"`

	// Cancellation is a manual data edit, never automated
	IsCanceled   bool   `db:"is_canceled" json:"isCanceled"`
	CancelReason string `db:"cancel_reason" json:"cancelReason,omitempty"`

	// Table part
	Lines []Line `db:"-" json:"items"`
}

// Line is one sold product, with price and name copied at sale time.
type Line struct {
	LineID id.ID `db:"line_id" json:"-"`
	BillID id.ID `db:"bill_id" json:"-"`
	LineNo int   `db:"line_no" json:"-"`

	StockItemID    id.ID           `db:"stock_item_id" json:"stockItemId"`
	Name           string          `db:"name" json:"name"`
	IdentifierCode string          `db:"identifier_code" json:"identifierCode"`
	Price          decimal.Decimal `db:"price" json:"price"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	Total          decimal.Decimal `db:"total" json:"total"`
}

// Validate implements entity.Validatable interface.
func (b *SaleBill) Validate(ctx context.Context) error {
	if !IsValidPaymentMethod(b.PaymentMethod) {
		return apperror.NewValidation("payment method must be cash, card or online").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(b.PaymentMethod))
	}
	if len(b.Lines) == 0 {
		return apperror.NewValidation("a sale requires at least one item").
			WithDetail("field", "items")
	}
	for i, line := range b.Lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation("sale quantity must be positive").
				WithDetail("field", "quantity").
				WithDetail("line", i+1)
		}
		if strings.TrimSpace(line.IdentifierCode) == "" {
			return apperror.NewValidation("identifier code is required").
				WithDetail("field", "identifierCode").
				WithDetail("line", i+1)
		}
	}
	return nil
}

// RecalculateTotal recomputes totalAmount from line snapshots.
func (b *SaleBill) RecalculateTotal() {
	total := decimal.Zero
	for _, line := range b.Lines {
		total = total.Add(line.Total)
	}
	b.TotalAmount = total
}
