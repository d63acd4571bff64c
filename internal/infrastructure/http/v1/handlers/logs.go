package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
	"wareflow/internal/domain/audit"
)

// LogHandler serves the audit log endpoints.
type LogHandler struct {
	*BaseHandler
	service *audit.Service
}

// NewLogHandler creates a new audit log handler.
func NewLogHandler(base *BaseHandler, service *audit.Service) *LogHandler {
	return &LogHandler{BaseHandler: base, service: service}
}

type logQuery struct {
	ActorID     string     `form:"actorId"`
	Type        string     `form:"type"`
	DetailKey   string     `form:"detailKey"`
	DetailValue string     `form:"detailValue"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Limit       int        `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Query returns audit records matching the given filter.
// GET /api/v1/logs
func (h *LogHandler) Query(c *gin.Context) {
	var query logQuery
	if !h.BindQuery(c, &query) {
		return
	}

	f := audit.Filter{
		Type:        audit.Type(query.Type),
		DetailKey:   query.DetailKey,
		DetailValue: query.DetailValue,
		From:        query.From,
		To:          query.To,
		Limit:       query.Limit,
	}
	if query.ActorID != "" {
		actorID, err := id.Parse(query.ActorID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid actorId").WithDetail("actorId", query.ActorID))
			return
		}
		f.ActorID = &actorID
	}

	records, err := h.service.Query(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, records)
}

// ActorHistory returns the most recent actions of one user.
// GET /api/v1/logs/actor/:id
func (h *LogHandler) ActorHistory(c *gin.Context) {
	actorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)

	records, err := h.service.ActorHistory(c.Request.Context(), actorID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, records)
}

// StockHistory returns the adjustment trail for one identifier code.
// GET /api/v1/logs/stock/:code
func (h *LogHandler) StockHistory(c *gin.Context) {
	history, err := h.service.StockHistory(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, history)
}
