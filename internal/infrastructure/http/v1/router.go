// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"wareflow/internal/core/security"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/auth"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/domain/catalogs/supplier"
	"wareflow/internal/domain/documents/entry"
	"wareflow/internal/domain/documents/sale"
	"wareflow/internal/domain/reports"
	"wareflow/internal/infrastructure/export"
	"wareflow/internal/infrastructure/http/v1/handlers"
	"wareflow/internal/infrastructure/http/v1/middleware"
	"wareflow/internal/infrastructure/storage/postgres"
	"wareflow/pkg/logger"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Logger *logger.Logger
	Pool   *postgres.Pool

	TokenValidator middleware.TokenValidator

	AuthService     *auth.Service
	SupplierService *supplier.Service
	ProductService  *product.Service
	EntryService    *entry.Service
	SaleService     *sale.Service
	ReportService   *reports.Service
	AuditService    *audit.Service

	// AllowedOrigins configures CORS for the web client. Empty disables
	// cross-origin access.
	AllowedOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	v1 := router.Group("/api/v1")
	{
		// Public: login only
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		registerAuthRoutes(protected, authHandler)
		registerSupplierRoutes(protected, baseHandler, cfg.SupplierService)
		registerProductRoutes(protected, baseHandler, cfg.ProductService)
		registerEntryRoutes(protected, baseHandler, cfg.EntryService)
		registerSaleRoutes(protected, baseHandler, cfg.SaleService)
		registerReportRoutes(protected, baseHandler, cfg.ReportService)
		registerLogRoutes(protected, baseHandler, cfg.AuditService)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	rg.GET("/auth/me", h.Me)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/change-password", h.ChangePassword)

	manage := middleware.RequireCapability(security.CapUserManage)
	rg.POST("/auth/register", manage, h.Register)
	rg.GET("/users", manage, h.ListUsers)
}

func registerSupplierRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *supplier.Service) {
	h := handlers.NewSupplierHandler(base, service)
	read := middleware.RequireCapability(security.CapSupplierRead)
	write := middleware.RequireCapability(security.CapSupplierWrite)

	g := rg.Group("/suppliers")
	g.GET("", read, h.List)
	g.GET("/:id", read, h.Get)
	g.GET("/:id/bills", read, h.BillHistory)
	g.GET("/code/:code", read, h.GetByCode)
	g.POST("", write, h.Create)
	g.PUT("/:id", write, h.Update)
	g.DELETE("/:id", write, h.Delete)
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *product.Service) {
	h := handlers.NewProductHandler(base, service)
	read := middleware.RequireCapability(security.CapProductRead)
	write := middleware.RequireCapability(security.CapProductWrite)
	adjust := middleware.RequireCapability(security.CapStockAdjust)

	g := rg.Group("/products")
	g.GET("", read, h.List)
	g.GET("/low-stock", read, h.LowStock)
	g.GET("/categories", read, h.Categories)
	g.GET("/:id", read, h.Get)
	g.GET("/identifier/:code", read, h.GetByIdentifier)
	g.GET("/identifier/:code/adjustments", read, h.AdjustmentHistory)
	g.PUT("/:id", write, h.Update)
	g.DELETE("/identifier/:code", write, h.Delete)
	g.POST("/adjust", adjust, h.Adjust)
}

func registerEntryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *entry.Service) {
	h := handlers.NewEntryHandler(base, service)
	read := middleware.RequireCapability(security.CapEntryRead)
	write := middleware.RequireCapability(security.CapEntryWrite)

	g := rg.Group("/entries")
	g.GET("", read, h.List)
	g.GET("/deleted", read, h.ListDeleted)
	g.GET("/:id", read, h.Get)
	g.GET("/no/:entryNo", read, h.GetByEntryNo)
	g.POST("", write, h.Create)
	g.PUT("/:id", write, h.Update)
	g.DELETE("/:id", write, h.Delete)
	g.POST("/:id/recover", write, h.Recover)
	g.DELETE("/:id/permanent", write, h.PermanentDelete)
}

func registerSaleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *sale.Service) {
	h := handlers.NewSaleHandler(base, service)
	read := middleware.RequireCapability(security.CapSaleRead)
	write := middleware.RequireCapability(security.CapSaleWrite)

	g := rg.Group("/sales")
	g.GET("", read, h.List)
	g.GET("/:id", read, h.Get)
	g.GET("/no/:billNo", read, h.GetByBillNo)
	g.POST("", write, h.Create)
	g.PUT("/:id", write, h.Update)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *reports.Service) {
	h := handlers.NewReportHandler(base, service, export.NewXLSXExporter())
	read := middleware.RequireCapability(security.CapReportRead)

	g := rg.Group("/reports", read)
	g.GET("/entries", h.Entries)
	g.GET("/entries/export", h.ExportEntries)
	g.GET("/stock", h.Stock)
	g.GET("/stock/export", h.ExportStock)
	g.GET("/sales", h.Sales)
	g.GET("/sales/export", h.ExportSales)
	g.GET("/suppliers", h.Suppliers)
	g.GET("/suppliers/export", h.ExportSuppliers)
	g.GET("/combined", h.Combined)
	g.GET("/filter-options", h.FilterOptions)
}

func registerLogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *audit.Service) {
	h := handlers.NewLogHandler(base, service)
	read := middleware.RequireCapability(security.CapLogRead)

	g := rg.Group("/logs", read)
	g.GET("", h.Query)
	g.GET("/actor/:id", h.ActorHistory)
	g.GET("/stock/:code", h.StockHistory)
}
