package dto

import (
	"time"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
	"wareflow/internal/domain/documents/sale"
)

// SaleLineRequest is one requested sale line.
type SaleLineRequest struct {
	IdentifierCode string `json:"identifierCode" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required,min=1"`
}

// CreateSaleRequest is the request body for recording a sale.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Items         []SaleLineRequest `json:"items" binding:"required"`
}

// ToInput converts the request to the service input.
func (r *CreateSaleRequest) ToInput() sale.CreateInput {
	in := sale.CreateInput{
		PaymentMethod: sale.PaymentMethod(r.PaymentMethod),
	}
	for _, item := range r.Items {
		in.Lines = append(in.Lines, sale.LineInput{
			IdentifierCode: item.IdentifierCode,
			Quantity:       item.Quantity,
		})
	}
	return in
}

// UpdateSaleRequest edits the cancellation fields of a recorded bill.
type UpdateSaleRequest struct {
	IsCanceled   *bool   `json:"isCanceled"`
	CancelReason *string `json:"cancelReason"`
}

// ToInput converts the request to the service input.
func (r *UpdateSaleRequest) ToInput() sale.UpdateInput {
	return sale.UpdateInput{
		IsCanceled:   r.IsCanceled,
		CancelReason: r.CancelReason,
	}
}

// SaleListQuery captures list/search parameters for sale bills.
type SaleListQuery struct {
	ListQuery

	PaymentMethod string     `form:"paymentMethod"`
	CashierID     string     `form:"cashierId"`
	DateFrom      *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"dateTo" time_format:"2006-01-02"`
}

// ToFilter converts the query to the domain list filter.
func (q *SaleListQuery) ToFilter() (sale.ListFilter, error) {
	f := sale.ListFilter{
		ListFilter:    q.ListQuery.ToFilter(),
		PaymentMethod: sale.PaymentMethod(q.PaymentMethod),
		DateFrom:      q.DateFrom,
		DateTo:        q.DateTo,
	}
	if q.CashierID != "" {
		cashierID, err := id.Parse(q.CashierID)
		if err != nil {
			return sale.ListFilter{}, apperror.NewValidation("invalid cashierId").WithDetail("cashierId", q.CashierID)
		}
		f.CashierID = &cashierID
	}
	return f, nil
}
