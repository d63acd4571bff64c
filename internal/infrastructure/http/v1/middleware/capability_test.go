package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/security"
)

func newCapabilityRouter(capability security.Capability, actor *appctx.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	if actor != nil {
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(appctx.WithActor(c.Request.Context(), actor))
		})
	}
	router.GET("/probe", RequireCapability(capability), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireCapability_NoActor(t *testing.T) {
	router := newCapabilityRouter(security.CapSaleRead, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapability_Forbidden(t *testing.T) {
	cashier := &appctx.Actor{ID: "u1", Username: "till", Role: security.RoleCashier}
	router := newCapabilityRouter(security.CapEntryWrite, cashier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "entry:write")
}

func TestRequireCapability_Allowed(t *testing.T) {
	staff := &appctx.Actor{ID: "u2", Username: "clerk", Role: security.RoleStaff}
	router := newCapabilityRouter(security.CapEntryWrite, staff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapability_AdminBypassesTable(t *testing.T) {
	admin := &appctx.Actor{ID: "u3", Username: "boss", Role: security.RoleAdmin}
	router := newCapabilityRouter(security.CapLogRead, admin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
