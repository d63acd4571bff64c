// Package pricing derives selling prices, margins, and bill totals.
// All functions are pure; persistence never calls back into this package.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/apperror"
)

// Discount types accepted on purchase entries.
const (
	DiscountPercentage = "percentage"
	DiscountAmount     = "amount"
)

var hundred = decimal.NewFromInt(100)

// Result holds the derived price pair for one line item.
type Result struct {
	MarginPercentage decimal.Decimal
	SellingPrice     decimal.Decimal
}

// Derive computes the missing half of the margin/selling-price pair.
// Exactly one of marginPct/sellingPrice is authoritative per call: a supplied
// selling price wins and the margin is recomputed from it.
func Derive(purchasePrice decimal.Decimal, marginPct, sellingPrice *decimal.Decimal) (Result, error) {
	if purchasePrice.IsNegative() {
		return Result{}, apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}

	switch {
	case sellingPrice != nil:
		if purchasePrice.IsZero() {
			return Result{}, apperror.NewValidation("purchase price is required to derive margin").
				WithDetail("field", "purchasePrice")
		}
		margin := sellingPrice.Sub(purchasePrice).Div(purchasePrice).Mul(hundred)
		return Result{MarginPercentage: margin, SellingPrice: *sellingPrice}, nil

	case marginPct != nil:
		sp := purchasePrice.Add(purchasePrice.Mul(*marginPct).Div(hundred))
		return Result{MarginPercentage: *marginPct, SellingPrice: sp}, nil

	default:
		return Result{}, apperror.NewValidation("either marginPercentage or sellingPrice is required").
			WithDetail("field", "marginPercentage")
	}
}

// LineTotal computes the purchase cost of one line: purchasePrice × quantity.
// Always computed, never caller-supplied.
func LineTotal(purchasePrice decimal.Decimal, quantity int64) decimal.Decimal {
	return purchasePrice.Mul(decimal.NewFromInt(quantity))
}

// ApplyDiscount computes the final payable amount for a bill.
// The discount type comparison is case-insensitive; an unknown type or a nil
// value leaves the total untouched. The result is clamped at zero.
func ApplyDiscount(billTotal decimal.Decimal, discountType string, discountValue *decimal.Decimal) decimal.Decimal {
	if discountValue == nil {
		return clampZero(billTotal)
	}

	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(discountType)) {
	case DiscountPercentage:
		discount = billTotal.Mul(*discountValue).Div(hundred)
	case DiscountAmount:
		discount = *discountValue
	default:
		return clampZero(billTotal)
	}

	return clampZero(billTotal.Sub(discount))
}

// IsValidDiscountType reports whether t names a known discount type.
func IsValidDiscountType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case DiscountPercentage, DiscountAmount:
		return true
	}
	return false
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
