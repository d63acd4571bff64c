package handlers

import (
	"github.com/gin-gonic/gin"

	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the stock item endpoints. Items are created by
// purchase entries, never directly here.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// List returns stock items with search and pagination.
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Get returns one stock item by ID.
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// GetByIdentifier returns one stock item by its identifier code.
// GET /api/v1/products/identifier/:code
func (h *ProductHandler) GetByIdentifier(c *gin.Context) {
	item, err := h.service.GetByIdentifier(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Update modifies descriptive and pricing fields of a stock item.
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStockItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(item)
	if err := h.service.Update(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Adjust applies a manual stock adjustment and returns the new quantity.
// POST /api/v1/products/adjust
func (h *ProductHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	newQuantity, err := h.service.Adjust(c.Request.Context(), req.ToAdjustment())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"identifierCode": req.IdentifierCode,
		"quantity":       newQuantity,
	})
}

// Delete removes a stock item permanently by identifier code.
// DELETE /api/v1/products/identifier/:code
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustmentHistory returns the adjustment trail for one identifier code.
// GET /api/v1/products/identifier/:code/adjustments
func (h *ProductHandler) AdjustmentHistory(c *gin.Context) {
	history, err := h.service.AdjustmentHistory(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, history)
}

// LowStock returns items at or below their low stock threshold.
// GET /api/v1/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Categories returns the distinct stock item categories.
// GET /api/v1/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, categories)
}
