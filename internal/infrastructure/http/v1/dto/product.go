package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"wareflow/internal/domain/catalogs/product"
)

// UpdateStockItemRequest is the request body for editing a stock item.
// Identifier code, entry reference and counters are immutable here;
// quantities change only through adjustments and sales.
type UpdateStockItemRequest struct {
	Name             string           `json:"name" binding:"required"`
	Category         string           `json:"category" binding:"required"`
	PurchasePrice    *decimal.Decimal `json:"purchasePrice"`
	MarginPercentage *decimal.Decimal `json:"marginPercentage"`
	SellingPrice     *decimal.Decimal `json:"sellingPrice"`
	LowStock         *int64           `json:"lowStock"`
	Shelf            string           `json:"shelf"`
}

// ApplyTo copies the mutable fields onto an existing stock item.
func (r *UpdateStockItemRequest) ApplyTo(item *product.StockItem) {
	item.Name = r.Name
	item.Category = r.Category
	if r.PurchasePrice != nil {
		item.PurchasePrice = *r.PurchasePrice
	}
	if r.MarginPercentage != nil {
		item.MarginPercentage = *r.MarginPercentage
	}
	if r.SellingPrice != nil {
		item.SellingPrice = *r.SellingPrice
	}
	if r.LowStock != nil {
		item.LowStock = *r.LowStock
	}
	if r.Shelf != "" {
		item.Shelf = r.Shelf
	}
}

// AdjustStockRequest is the request body for a manual stock adjustment.
type AdjustStockRequest struct {
	IdentifierCode string `json:"identifierCode" binding:"required"`
	AdjustmentType string `json:"adjustmentType" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required,min=1"`
	Reason         string `json:"reason" binding:"required"`
}

// ToAdjustment converts the request to the domain adjustment.
func (r *AdjustStockRequest) ToAdjustment() product.Adjustment {
	return product.Adjustment{
		IdentifierCode: r.IdentifierCode,
		Type:           product.AdjustmentType(strings.ToLower(r.AdjustmentType)),
		Quantity:       r.Quantity,
		Reason:         r.Reason,
	}
}
