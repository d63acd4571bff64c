package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/core/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDerive_FromMargin(t *testing.T) {
	res, err := Derive(dec("100"), decPtr("20"), nil)
	require.NoError(t, err)

	assert.True(t, res.SellingPrice.Equal(dec("120")), "selling price: %s", res.SellingPrice)
	assert.True(t, res.MarginPercentage.Equal(dec("20")))
}

func TestDerive_FromSellingPrice(t *testing.T) {
	res, err := Derive(dec("100"), nil, decPtr("150"))
	require.NoError(t, err)

	assert.True(t, res.MarginPercentage.Equal(dec("50")), "margin: %s", res.MarginPercentage)
	assert.True(t, res.SellingPrice.Equal(dec("150")))
}

func TestDerive_SellingPriceWinsOverMargin(t *testing.T) {
	res, err := Derive(dec("100"), decPtr("99"), decPtr("110"))
	require.NoError(t, err)

	assert.True(t, res.MarginPercentage.Equal(dec("10")))
	assert.True(t, res.SellingPrice.Equal(dec("110")))
}

func TestDerive_NeitherSupplied(t *testing.T) {
	_, err := Derive(dec("100"), nil, nil)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDerive_ZeroPurchasePriceWithSellingPrice(t *testing.T) {
	_, err := Derive(dec("0"), nil, decPtr("50"))
	require.Error(t, err)
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(dec("100"), 10)
	assert.True(t, total.Equal(dec("1000")), "total: %s", total)

	total = LineTotal(dec("12.50"), 4)
	assert.True(t, total.Equal(dec("50")))
}

func TestApplyDiscount_Percentage(t *testing.T) {
	final := ApplyDiscount(dec("1000"), "percentage", decPtr("10"))
	assert.True(t, final.Equal(dec("900")), "final: %s", final)
}

func TestApplyDiscount_PercentageCaseInsensitive(t *testing.T) {
	final := ApplyDiscount(dec("1000"), "Percentage", decPtr("10"))
	assert.True(t, final.Equal(dec("900")))

	final = ApplyDiscount(dec("1000"), " AMOUNT ", decPtr("100"))
	assert.True(t, final.Equal(dec("900")))
}

func TestApplyDiscount_AmountClampedAtZero(t *testing.T) {
	final := ApplyDiscount(dec("40"), "amount", decPtr("50"))
	assert.True(t, final.Equal(decimal.Zero), "final: %s", final)
}

func TestApplyDiscount_UnknownTypeLeavesTotal(t *testing.T) {
	final := ApplyDiscount(dec("500"), "coupon", decPtr("100"))
	assert.True(t, final.Equal(dec("500")))
}

func TestApplyDiscount_NilValueLeavesTotal(t *testing.T) {
	final := ApplyDiscount(dec("500"), "percentage", nil)
	assert.True(t, final.Equal(dec("500")))
}

func TestIsValidDiscountType(t *testing.T) {
	assert.True(t, IsValidDiscountType("percentage"))
	assert.True(t, IsValidDiscountType("Amount"))
	assert.False(t, IsValidDiscountType("coupon"))
	assert.False(t, IsValidDiscountType(""))
}
