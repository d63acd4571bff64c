// Package export renders reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"wareflow/internal/domain/reports"
)

const dateFormat = "2006-01-02"

// XLSXExporter writes report data as a single-sheet xlsx workbook.
type XLSXExporter struct{}

// NewXLSXExporter creates an xlsx exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// EntryReport writes the purchase entry report.
func (x *XLSXExporter) EntryReport(w io.Writer, report *reports.EntryReport) error {
	rows := make([][]any, 0, len(report.Rows)+2)
	rows = append(rows, []any{
		"Entry No", "Supplier Bill No", "Supplier Code", "Date",
		"Credit Days", "Alert Sent", "Bill Total", "Final Payable", "Deleted",
	})
	for _, row := range report.Rows {
		rows = append(rows, []any{
			row.EntryNo, row.SupplierBillNo, row.SupplierCode,
			row.Date.Format(dateFormat), row.CreditDaysLimit, row.AlertTriggered,
			row.BillTotal.InexactFloat64(), row.FinalPayableAmount.InexactFloat64(),
			row.IsDeleted,
		})
	}
	rows = append(rows, []any{
		"Total", "", "", "", "", "",
		report.TotalBilled.InexactFloat64(), report.TotalPayable.InexactFloat64(), "",
	})

	return writeSheet(w, "Entries", rows)
}

// StockReport writes the stock report.
func (x *XLSXExporter) StockReport(w io.Writer, report *reports.StockReport) error {
	rows := make([][]any, 0, len(report.Rows)+2)
	rows = append(rows, []any{
		"Name", "Category", "Identifier", "Entry No", "Shelf",
		"Quantity", "Sold", "Low Stock", "Purchase Price", "Selling Price", "Stock Value",
	})
	for _, row := range report.Rows {
		rows = append(rows, []any{
			row.Name, row.Category, row.IdentifierCode, row.EntryNo, row.Shelf,
			row.Quantity, row.SoldQty, row.LowStock,
			row.PurchasePrice.InexactFloat64(), row.SellingPrice.InexactFloat64(),
			row.StockValue.InexactFloat64(),
		})
	}
	rows = append(rows, []any{
		"Total", "", "", "", "",
		report.TotalQuantity, "", "", "", "",
		report.TotalStockValue.InexactFloat64(),
	})

	return writeSheet(w, "Stock", rows)
}

// SalesReport writes the sales report.
func (x *XLSXExporter) SalesReport(w io.Writer, report *reports.SalesReport) error {
	rows := make([][]any, 0, len(report.Rows)+2)
	rows = append(rows, []any{
		"Bill No", "Date", "Payment Method", "Cashier", "Lines", "Total",
	})
	for _, row := range report.Rows {
		rows = append(rows, []any{
			row.BillNo, row.Date.Format(dateFormat), row.PaymentMethod,
			row.CashierName, row.LineCount, row.TotalAmount.InexactFloat64(),
		})
	}
	rows = append(rows, []any{
		"Total", "", "", "", report.TotalCount, report.TotalAmount.InexactFloat64(),
	})

	return writeSheet(w, "Sales", rows)
}

// SupplierReport writes the per-supplier purchase summary.
func (x *XLSXExporter) SupplierReport(w io.Writer, report *reports.SupplierReport) error {
	rows := make([][]any, 0, len(report.Rows)+1)
	rows = append(rows, []any{
		"Supplier", "Code", "Entries", "Total Billed", "Last Entry",
	})
	for _, row := range report.Rows {
		lastEntry := ""
		if row.LastEntryAt != nil {
			lastEntry = row.LastEntryAt.Format(dateFormat)
		}
		rows = append(rows, []any{
			row.SupplierName, row.SupplierCode, row.EntryCount,
			row.TotalBilled.InexactFloat64(), lastEntry,
		})
	}

	return writeSheet(w, "Suppliers", rows)
}

func writeSheet(w io.Writer, sheet string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
