package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"wareflow/internal/domain/documents/entry"
)

// EntryLineRequest is one purchased line item.
// Exactly one of marginPercentage and sellingPrice must be present.
type EntryLineRequest struct {
	Name             string           `json:"name" binding:"required"`
	Category         string           `json:"category" binding:"required"`
	Quantity         int64            `json:"quantity" binding:"required,min=1"`
	PurchasePrice    decimal.Decimal  `json:"purchasePrice" binding:"required"`
	MarginPercentage *decimal.Decimal `json:"marginPercentage"`
	SellingPrice     *decimal.Decimal `json:"sellingPrice"`
	Shelf            string           `json:"shelf"`
	LowStock         *int64           `json:"lowStock"`
}

// CreateEntryRequest is the request body for recording a purchase entry.
type CreateEntryRequest struct {
	SupplierBillNo  string             `json:"supplierBillNo" binding:"required"`
	SupplierCode    string             `json:"supplierCode" binding:"required"`
	Date            time.Time          `json:"date"`
	CreditDaysLimit int                `json:"creditDaysLimit" binding:"omitempty,min=0"`
	DiscountType    string             `json:"discountType"`
	DiscountValue   *decimal.Decimal   `json:"discountValue"`
	Items           []EntryLineRequest `json:"items" binding:"required"`
}

// ToInput converts the request to the service input.
func (r *CreateEntryRequest) ToInput() entry.CreateInput {
	in := entry.CreateInput{
		SupplierBillNo:  r.SupplierBillNo,
		SupplierCode:    r.SupplierCode,
		Date:            r.Date,
		CreditDaysLimit: r.CreditDaysLimit,
		DiscountType:    r.DiscountType,
		DiscountValue:   r.DiscountValue,
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	for _, item := range r.Items {
		in.Lines = append(in.Lines, entry.LineInput{
			Name:             item.Name,
			Category:         item.Category,
			Quantity:         item.Quantity,
			PurchasePrice:    item.PurchasePrice,
			MarginPercentage: item.MarginPercentage,
			SellingPrice:     item.SellingPrice,
			Shelf:            item.Shelf,
			LowStock:         item.LowStock,
		})
	}
	return in
}

// EntryListQuery captures list/search parameters for purchase entries.
type EntryListQuery struct {
	ListQuery

	SupplierCode string     `form:"supplierCode"`
	DateFrom     *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo       *time.Time `form:"dateTo" time_format:"2006-01-02"`
	OnCredit     *bool      `form:"onCredit"`
}

// ToFilter converts the query to the domain list filter.
func (q *EntryListQuery) ToFilter() entry.ListFilter {
	return entry.ListFilter{
		ListFilter:   q.ListQuery.ToFilter(),
		SupplierCode: q.SupplierCode,
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		OnCredit:     q.OnCredit,
	}
}

// UpdateEntryRequest is the request body for updating entry header fields.
type UpdateEntryRequest struct {
	CreditDaysLimit *int             `json:"creditDaysLimit" binding:"omitempty,min=0"`
	DiscountType    *string          `json:"discountType"`
	DiscountValue   *decimal.Decimal `json:"discountValue"`
}

// ToInput converts the request to the service input.
func (r *UpdateEntryRequest) ToInput() entry.UpdateInput {
	return entry.UpdateInput{
		CreditDaysLimit: r.CreditDaysLimit,
		DiscountType:    r.DiscountType,
		DiscountValue:   r.DiscountValue,
	}
}
