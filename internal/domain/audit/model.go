// Package audit provides the per-actor append-only action log.
// Records are never mutated or removed; they are the only audit trail and
// the source for stock-adjustment history reconstruction.
package audit

import (
	"time"

	"wareflow/internal/core/id"
	"wareflow/internal/core/security"
)

// Type classifies what kind of object an action touched.
type Type string

const (
	TypeEntry    Type = "entry"
	TypeProduct  Type = "product"
	TypeStock    Type = "stock"
	TypeSupplier Type = "supplier"
	TypeReport   Type = "report"
	TypeSales    Type = "sales"
)

// IsValidType reports whether t is a known audit type.
func IsValidType(t Type) bool {
	switch t {
	case TypeEntry, TypeProduct, TypeStock, TypeSupplier, TypeReport, TypeSales:
		return true
	}
	return false
}

// Details is the free-form payload attached to a record.
type Details map[string]any

// Record is one appended action.
type Record struct {
	ID          id.ID         `db:"id" json:"-"`
	ActorID     id.ID         `db:"actor_id" json:"actorId"`
	Action      string        `db:"action" json:"action"`
	Type        Type          `db:"type" json:"type"`
	Date        time.Time     `db:"date" json:"date"`
	Details     Details       `db:"details" json:"details"`
	PerformedBy string        `db:"performed_by" json:"performedBy"`
	Role        security.Role `db:"role" json:"role"`
}

// StockAdjustment is the reconstructed view of one manual stock change,
// rebuilt from stock-type records at read time.
type StockAdjustment struct {
	ProductName     string    `json:"productName"`
	IdentifierCode  string    `json:"identifierCode"`
	AdjustmentType  string    `json:"adjustmentType"`
	QuantityChanged int64     `json:"quantityChanged"`
	Reason          string    `json:"reason"`
	PerformedBy     string    `json:"performedBy"`
	Date            time.Time `json:"date"`
}
