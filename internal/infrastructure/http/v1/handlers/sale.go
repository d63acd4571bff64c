package handlers

import (
	"github.com/gin-gonic/gin"

	"wareflow/internal/domain/documents/sale"
	"wareflow/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sale bill endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create records a sale and deducts stock.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, bill)
}

// List returns sale bills with filtering and pagination.
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	var query dto.SaleListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Update edits the cancellation fields of a bill. Stock is untouched.
// PUT /api/v1/sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Update(c.Request.Context(), billID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bill)
}

// Get returns one bill with its lines.
// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	billID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	bill, err := h.service.GetByID(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bill)
}

// GetByBillNo returns one bill by its generated number.
// GET /api/v1/sales/no/:billNo
func (h *SaleHandler) GetByBillNo(c *gin.Context) {
	bill, err := h.service.GetByBillNo(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bill)
}
