package dto

import (
	"strings"

	"wareflow/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	SupplierName string `json:"supplierName" binding:"required"`
	SupplierCode string `json:"supplierCode" binding:"required"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// ToEntity converts the request to a domain supplier.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.New(r.SupplierName, strings.ToUpper(strings.TrimSpace(r.SupplierCode)))
	s.Street = r.Street
	s.City = r.City
	s.State = r.State
	s.Pincode = r.Pincode
	s.Phone = r.Phone
	s.Email = r.Email
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
// The code is immutable and deliberately absent.
type UpdateSupplierRequest struct {
	SupplierName string `json:"supplierName" binding:"required"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// ApplyTo copies the mutable fields onto an existing supplier.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Name = supplier.NormalizeName(r.SupplierName)
	s.Street = r.Street
	s.City = r.City
	s.State = r.State
	s.Pincode = r.Pincode
	s.Phone = r.Phone
	s.Email = r.Email
}
