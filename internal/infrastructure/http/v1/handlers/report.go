package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wareflow/internal/core/apperror"
	"wareflow/internal/domain/reports"
	"wareflow/internal/infrastructure/export"
	"wareflow/internal/infrastructure/http/v1/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the reporting endpoints, as JSON and as XLSX
// downloads.
type ReportHandler struct {
	*BaseHandler
	service  *reports.Service
	exporter *export.XLSXExporter
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service, exporter *export.XLSXExporter) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service, exporter: exporter}
}

// Entries returns the purchase entry report.
// GET /api/v1/reports/entries
func (h *ReportHandler) Entries(c *gin.Context) {
	var query dto.EntryReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetEntryReport(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// ExportEntries streams the entry report as an XLSX workbook.
// GET /api/v1/reports/entries/export
func (h *ReportHandler) ExportEntries(c *gin.Context) {
	var query dto.EntryReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetEntryReport(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeXLSX(c, "entry-report", func() error {
		return h.exporter.EntryReport(c.Writer, report)
	})
}

// Stock returns the stock report.
// GET /api/v1/reports/stock
func (h *ReportHandler) Stock(c *gin.Context) {
	var query dto.StockReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetStockReport(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// ExportStock streams the stock report as an XLSX workbook.
// GET /api/v1/reports/stock/export
func (h *ReportHandler) ExportStock(c *gin.Context) {
	var query dto.StockReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetStockReport(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeXLSX(c, "stock-report", func() error {
		return h.exporter.StockReport(c.Writer, report)
	})
}

// Sales returns the sales report.
// GET /api/v1/reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	var query dto.SalesReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid cashierId"))
		return
	}

	report, err := h.service.GetSalesReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// ExportSales streams the sales report as an XLSX workbook.
// GET /api/v1/reports/sales/export
func (h *ReportHandler) ExportSales(c *gin.Context) {
	var query dto.SalesReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid cashierId"))
		return
	}

	report, err := h.service.GetSalesReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeXLSX(c, "sales-report", func() error {
		return h.exporter.SalesReport(c.Writer, report)
	})
}

// Suppliers returns the per-supplier purchase summary.
// GET /api/v1/reports/suppliers
func (h *ReportHandler) Suppliers(c *gin.Context) {
	report, err := h.service.GetSupplierReport(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// ExportSuppliers streams the supplier report as an XLSX workbook.
// GET /api/v1/reports/suppliers/export
func (h *ReportHandler) ExportSuppliers(c *gin.Context) {
	report, err := h.service.GetSupplierReport(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeXLSX(c, "supplier-report", func() error {
		return h.exporter.SupplierReport(c.Writer, report)
	})
}

// Combined returns the dashboard headline numbers.
// GET /api/v1/reports/combined
func (h *ReportHandler) Combined(c *gin.Context) {
	report, err := h.service.GetCombinedReport(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// FilterOptions returns the values available for report filters.
// GET /api/v1/reports/filter-options
func (h *ReportHandler) FilterOptions(c *gin.Context) {
	options, err := h.service.GetFilterOptions(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, options)
}

// writeXLSX sets download headers and runs the export. Errors after the
// first byte cannot be turned into a JSON response anymore, so they are
// only recorded on the context.
func (h *ReportHandler) writeXLSX(c *gin.Context, name string, write func() error) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := write(); err != nil {
		_ = c.Error(err)
	}
}
