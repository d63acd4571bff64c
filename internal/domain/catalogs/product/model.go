// Package product provides the StockItem catalog and stock ledger operations.
// One StockItem is created per purchase line item and tracks on-hand quantity
// from then on.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/token"
)

// Defaults applied when a purchase line omits the fields.
const (
	DefaultLowStock = 10
	DefaultShelf    = "Unassigned"
)

// AdjustmentType for manual stock corrections.
type AdjustmentType string

const (
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
)

// DeltaReason names what caused a quantity change.
type DeltaReason string

const (
	ReasonPurchase DeltaReason = "purchase"
	ReasonSale     DeltaReason = "sale"
	ReasonManual   DeltaReason = "manual"
)

// StockItem is the mutable, queryable unit of inventory.
type StockItem struct {
	entity.BaseEntity

	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`

	// IdentifierCode is the unique 8-character QR token printed on labels
	IdentifierCode string `db:"identifier_code" json:"identifierCode"`

	// EntryNo references the originating purchase entry (not ownership)
	EntryNo string `db:"entry_no" json:"entryNo"`

	PurchasePrice    decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	MarginPercentage decimal.Decimal `db:"margin_percentage" json:"marginPercentage"`
	SellingPrice     decimal.Decimal `db:"selling_price" json:"sellingPrice"`

	// Quantity is current on-hand stock, never negative
	Quantity int64 `db:"quantity" json:"quantity"`

	// SoldQty accumulates units sold, monotonically non-decreasing
	SoldQty int64 `db:"sold_qty" json:"soldQty"`

	// LowStock is the reorder threshold
	LowStock int64 `db:"low_stock" json:"lowStock"`

	Shelf string `db:"shelf" json:"shelf"`
}

// Validate implements entity.Validatable interface.
func (p *StockItem) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Category) == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	if !token.IsValid(p.IdentifierCode) {
		return apperror.NewValidation("identifier code must be 8 uppercase alphanumeric characters").
			WithDetail("field", "identifierCode").
			WithDetail("value", p.IdentifierCode)
	}
	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	return nil
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (p *StockItem) IsLowStock() bool {
	return p.Quantity <= p.LowStock
}

// Adjustment is one manual stock correction request.
type Adjustment struct {
	IdentifierCode string
	Type           AdjustmentType
	Quantity       int64
	Reason         string
}

// Validate checks the adjustment request before it reaches the ledger.
func (a Adjustment) Validate() error {
	if a.Quantity <= 0 {
		return apperror.NewInvalidAdjustment("adjustment quantity must be a positive number").
			WithDetail("quantity", a.Quantity)
	}
	if strings.TrimSpace(a.Reason) == "" {
		return apperror.NewInvalidAdjustment("a reason is required for manual adjustments")
	}
	switch a.Type {
	case AdjustIncrease, AdjustDecrease:
	default:
		return apperror.NewInvalidAdjustment("adjustment type must be increase or decrease").
			WithDetail("adjustmentType", string(a.Type))
	}
	return nil
}

// Delta returns the signed quantity change for the adjustment.
func (a Adjustment) Delta() int64 {
	if a.Type == AdjustDecrease {
		return -a.Quantity
	}
	return a.Quantity
}
