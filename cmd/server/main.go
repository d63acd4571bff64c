// Package main is the entry point for the WareFlow API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wareflow/internal/domain/alerts"
	"wareflow/internal/domain/audit"
	"wareflow/internal/domain/auth"
	"wareflow/internal/domain/catalogs/product"
	"wareflow/internal/domain/catalogs/supplier"
	"wareflow/internal/domain/documents/entry"
	"wareflow/internal/domain/documents/sale"
	"wareflow/internal/domain/reports"
	v1 "wareflow/internal/infrastructure/http/v1"
	"wareflow/internal/infrastructure/notify"
	"wareflow/internal/infrastructure/storage/postgres"
	"wareflow/internal/infrastructure/storage/postgres/auth_repo"
	"wareflow/internal/infrastructure/storage/postgres/catalog_repo"
	"wareflow/internal/infrastructure/storage/postgres/document_repo"
	"wareflow/internal/infrastructure/storage/postgres/report_repo"
	"wareflow/pkg/logger"
	"wareflow/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting wareflow server")

	// --- Database ---
	dbURL := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	stockItemRepo := catalog_repo.NewStockItemRepo(txManager)
	entryRepo := document_repo.NewEntryRepo(txManager)
	saleRepo := document_repo.NewSaleRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit repository", "error", err)
	}

	// --- Services ---
	numeratorService := numerator.New(pool)

	auditService := audit.NewService(auditRepo, userRepo)

	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	supplierService := supplier.NewService(supplierRepo, txManager, auditService)
	productService := product.NewService(stockItemRepo, txManager, auditService)
	entryService := entry.NewService(entryRepo, supplierRepo, stockItemRepo, numeratorService, txManager, auditService)
	saleService := sale.NewService(saleRepo, stockItemRepo, numeratorService, txManager, auditService)
	reportService := reports.NewService(reportRepo, auditService)

	// --- Credit alert scheduler ---
	var notifier alerts.Notifier
	if smtpHost := os.Getenv("SMTP_HOST"); smtpHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     smtpHost,
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "alerts@wareflow.local"),
		})
		log.Infow("credit alerts delivered via smtp", "host", smtpHost)
	} else {
		notifier = notify.NewLogNotifier()
		log.Info("SMTP_HOST not set, credit alerts are logged only")
	}

	scheduler := alerts.NewScheduler(entryRepo, notifier, notify.NewAdminRecipientSource(userRepo))
	if interval := getEnvDuration("ALERT_SCAN_INTERVAL", 24*time.Hour); interval > 0 {
		scheduler.Interval = interval
	}
	scheduler.Start(logger.WithLogger(ctx, log.WithComponent("alerts")))
	defer scheduler.Stop()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:          log,
		Pool:            pool,
		TokenValidator:  jwtService,
		AuthService:     authService,
		SupplierService: supplierService,
		ProductService:  productService,
		EntryService:    entryService,
		SaleService:     saleService,
		ReportService:   reportService,
		AuditService:    auditService,
		AllowedOrigins:  splitEnv("CORS_ALLOWED_ORIGINS"),
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
