// Package reports provides report generation services.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"wareflow/internal/core/id"
)

// --- Entry Report ---

// EntryReportFilter defines filter for the purchase entry report.
type EntryReportFilter struct {
	// Period
	DateFrom *time.Time
	DateTo   *time.Time

	SupplierCode string

	// OnCredit selects entries with creditDaysLimit > 0.
	OnCredit *bool

	// ReachedCreditLimit selects entries whose credit window has expired
	// as of now.
	ReachedCreditLimit *bool

	IncludeDeleted bool

	Limit  int
	Offset int
}

// EntryReportRow represents a single entry in the report.
type EntryReportRow struct {
	ID                 id.ID           `db:"id" json:"id"`
	EntryNo            string          `db:"entry_no" json:"entryNo"`
	SupplierBillNo     string          `db:"supplier_bill_no" json:"supplierBillNo"`
	SupplierCode       string          `db:"supplier_code" json:"supplierCode"`
	Date               time.Time       `db:"date" json:"date"`
	CreditDaysLimit    int             `db:"credit_days_limit" json:"creditDaysLimit"`
	AlertTriggered     bool            `db:"alert_triggered" json:"alertTriggered"`
	BillTotal          decimal.Decimal `db:"bill_total" json:"billTotal"`
	FinalPayableAmount decimal.Decimal `db:"final_payable_amount" json:"finalPayableAmount"`
	LineCount          int             `db:"line_count" json:"lineCount"`
	IsDeleted          bool            `db:"is_deleted" json:"isDeleted"`
}

// EntryReport represents the full entry report.
type EntryReport struct {
	Rows       []EntryReportRow `json:"rows"`
	TotalCount int              `json:"totalCount"`

	// Summary over the filtered set, pagination ignored
	TotalBilled  decimal.Decimal `json:"totalBilled"`
	TotalPayable decimal.Decimal `json:"totalPayable"`
}

// --- Stock Report ---

// StockReportFilter defines filter for the stock report.
type StockReportFilter struct {
	Category string
	Search   string

	// LowStockOnly keeps items at or below their reorder threshold.
	LowStockOnly bool

	Limit  int
	Offset int
}

// StockReportRow represents a single stock item in the report.
type StockReportRow struct {
	ID             id.ID           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Category       string          `db:"category" json:"category"`
	IdentifierCode string          `db:"identifier_code" json:"identifierCode"`
	EntryNo        string          `db:"entry_no" json:"entryNo"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	SoldQty        int64           `db:"sold_qty" json:"soldQty"`
	LowStock       int64           `db:"low_stock" json:"lowStock"`
	Shelf          string          `db:"shelf" json:"shelf"`
	PurchasePrice  decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	SellingPrice   decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	StockValue     decimal.Decimal `db:"stock_value" json:"stockValue"`
}

// StockReport represents the full stock report.
type StockReport struct {
	Rows       []StockReportRow `json:"rows"`
	TotalCount int              `json:"totalCount"`

	TotalQuantity int64 `json:"totalQuantity"`
	// Cost of on-hand stock at purchase prices
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
	// Value of on-hand stock at selling prices
	TotalRetailValue decimal.Decimal `json:"totalRetailValue"`
}

// --- Sales Report ---

// SalesReportFilter defines filter for the sales report.
type SalesReportFilter struct {
	// Period
	DateFrom *time.Time
	DateTo   *time.Time

	PaymentMethod string
	CashierID     *id.ID

	Limit  int
	Offset int
}

// SalesReportRow represents a single bill in the report.
type SalesReportRow struct {
	ID            id.ID           `db:"id" json:"id"`
	BillNo        string          `db:"bill_no" json:"billNo"`
	Date          time.Time       `db:"date" json:"date"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	CashierName   string          `db:"cashier_name" json:"cashierName"`
	LineCount     int             `db:"line_count" json:"lineCount"`
}

// PaymentMethodSummary provides count and totals per payment method.
type PaymentMethodSummary struct {
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	BillCount     int             `db:"bill_count" json:"billCount"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
}

// SalesReport represents the full sales report.
type SalesReport struct {
	Rows       []SalesReportRow `json:"rows"`
	TotalCount int              `json:"totalCount"`

	TotalAmount decimal.Decimal        `json:"totalAmount"`
	ByPayment   []PaymentMethodSummary `json:"byPaymentMethod,omitempty"`
}

// --- Supplier Report ---

// SupplierReportRow aggregates per-supplier purchase activity.
type SupplierReportRow struct {
	SupplierID   id.ID           `db:"supplier_id" json:"supplierId"`
	SupplierName string          `db:"supplier_name" json:"supplierName"`
	SupplierCode string          `db:"supplier_code" json:"supplierCode"`
	EntryCount   int             `db:"entry_count" json:"entryCount"`
	TotalBilled  decimal.Decimal `db:"total_billed" json:"totalBilled"`
	LastEntryAt  *time.Time      `db:"last_entry_at" json:"lastEntryAt,omitempty"`
}

// SupplierReport represents the full supplier report.
type SupplierReport struct {
	Rows       []SupplierReportRow `json:"rows"`
	TotalCount int                 `json:"totalCount"`
}

// --- Combined Report ---

// CombinedReport bundles the headline numbers of every area.
type CombinedReport struct {
	GeneratedAt time.Time `json:"generatedAt"`

	EntryCount   int             `json:"entryCount"`
	TotalBilled  decimal.Decimal `json:"totalBilled"`
	TotalPayable decimal.Decimal `json:"totalPayable"`

	StockItemCount  int             `json:"stockItemCount"`
	LowStockCount   int             `json:"lowStockCount"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`

	SaleCount  int             `json:"saleCount"`
	TotalSales decimal.Decimal `json:"totalSales"`

	SupplierCount int `json:"supplierCount"`
}

// FilterOptions lists the distinct values usable in report filters.
type FilterOptions struct {
	Categories     []string `json:"categories"`
	SupplierCodes  []string `json:"supplierCodes"`
	PaymentMethods []string `json:"paymentMethods"`
}
