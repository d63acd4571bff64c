package handlers

import (
	"github.com/gin-gonic/gin"

	"wareflow/internal/domain/documents/entry"
	"wareflow/internal/infrastructure/http/v1/dto"
)

// EntryHandler serves the purchase entry endpoints.
type EntryHandler struct {
	*BaseHandler
	service *entry.Service
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(base *BaseHandler, service *entry.Service) *EntryHandler {
	return &EntryHandler{BaseHandler: base, service: service}
}

// Create records a purchase entry and stocks its line items.
// POST /api/v1/entries
func (h *EntryHandler) Create(c *gin.Context) {
	var req dto.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, e)
}

// List returns active entries with filtering and pagination.
// GET /api/v1/entries
func (h *EntryHandler) List(c *gin.Context) {
	var query dto.EntryListQuery
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

// ListDeleted returns soft-deleted entries awaiting recovery or purge.
// GET /api/v1/entries/deleted
func (h *EntryHandler) ListDeleted(c *gin.Context) {
	var query dto.EntryListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	filter.OnlyDeleted = true

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// Get returns one entry with its lines.
// GET /api/v1/entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// GetByEntryNo returns one entry by its generated number.
// GET /api/v1/entries/no/:entryNo
func (h *EntryHandler) GetByEntryNo(c *gin.Context) {
	e, err := h.service.GetByEntryNo(c.Request.Context(), c.Param("entryNo"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Update modifies the mutable header fields of an entry.
// PUT /api/v1/entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), entryID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Delete soft-deletes an entry, reversing its stock.
// DELETE /api/v1/entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Recover restores a soft-deleted entry, re-applying its stock.
// POST /api/v1/entries/:id/recover
func (h *EntryHandler) Recover(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Recover(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// PermanentDelete removes a soft-deleted entry for good.
// DELETE /api/v1/entries/:id/permanent
func (h *EntryHandler) PermanentDelete(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.PermanentDelete(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
