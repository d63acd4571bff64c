// Package supplier provides the Supplier catalog.
// Suppliers are the counterparties purchase entries are recorded against.
package supplier

import (
	"context"
	"regexp"
	"strings"
	"time"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
)

// Pre-compiled regex patterns for validation
var (
	codeRE    = regexp.MustCompile(`^[A-Z]{4}$`)
	emailRE   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	andCoRE   = regexp.MustCompile(`\s*&CO$`)
	pincodeRE = regexp.MustCompile(`^\d{4,10}$`)
)

// Supplier represents a purchase counterparty.
type Supplier struct {
	entity.BaseEntity
	entity.Lifecycle

	// Name is the normalized display name (see NormalizeName)
	Name string `db:"name" json:"supplierName"`

	// Code is a unique 4-uppercase-letter identifier
	Code string `db:"code" json:"supplierCode"`

	// Address
	Street  string `db:"street" json:"street,omitempty"`
	City    string `db:"city" json:"city,omitempty"`
	State   string `db:"state" json:"state,omitempty"`
	Pincode string `db:"pincode" json:"pincode,omitempty"`

	// Contact
	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`
}

// BillRef is one record in the supplier's append-only bill history.
// A new record is appended every time a purchase entry references the supplier.
type BillRef struct {
	ID           id.ID     `db:"id" json:"-"`
	SupplierID   id.ID     `db:"supplier_id" json:"-"`
	BillNo       string    `db:"bill_no" json:"billNo"`
	EntryNo      string    `db:"entry_no" json:"entryNo"`
	Date         time.Time `db:"date" json:"date"`
}

// New creates a Supplier with normalized name and generated ID.
func New(name, code string) *Supplier {
	return &Supplier{
		BaseEntity: entity.NewBaseEntity(),
		Name:       NormalizeName(name),
		Code:       strings.ToUpper(strings.TrimSpace(code)),
	}
}

// NormalizeName upper-cases the supplier name and rewrites a trailing
// "&CO" into " & Co" so stored names render consistently on bills.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	return andCoRE.ReplaceAllString(n, " & Co")
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "supplierName")
	}

	if !codeRE.MatchString(s.Code) {
		return apperror.NewValidation("supplier code must be exactly 4 uppercase letters").
			WithDetail("field", "supplierCode").
			WithDetail("value", s.Code)
	}

	if s.Email != "" && !emailRE.MatchString(s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if s.Pincode != "" && !pincodeRE.MatchString(s.Pincode) {
		return apperror.NewValidation("invalid pincode").
			WithDetail("field", "pincode")
	}

	return nil
}
