// Package main provides a CLI tool for seeding the database with the
// initial admin account.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"wareflow/internal/core/id"
	"wareflow/internal/core/security"
	"wareflow/internal/infrastructure/storage/postgres"
	"wareflow/pkg/logger"
	"wareflow/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedSequences(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed sequences", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@wareflow.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1`,
		adminUsername,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "username", adminUsername, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (
			id, version, username, email, password_hash, role, is_active
		)
		VALUES ($1, 1, $2, $3, $4, $5, true)
	`, userID, adminUsername, adminEmail, string(passwordHash), security.RoleAdmin)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", adminUsername, "user_id", userID)
	return nil
}

// seedSequences fast-forwards the entry and bill counters past any
// existing data, so restored databases keep generating fresh numbers.
func seedSequences(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	num := numerator.New(pool)

	var lastEntryNo string
	err := pool.QueryRow(ctx,
		`SELECT entry_no FROM doc_entries ORDER BY entry_no DESC LIMIT 1`,
	).Scan(&lastEntryNo)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("read last entry number: %w", err)
	}
	if lastEntryNo != "" {
		if err := num.Seed(ctx, numerator.EntryConfig(), lastEntryNo); err != nil {
			return fmt.Errorf("seed entry sequence: %w", err)
		}
	}

	var lastBillNo string
	err = pool.QueryRow(ctx,
		`SELECT bill_no FROM doc_sale_bills ORDER BY bill_no DESC LIMIT 1`,
	).Scan(&lastBillNo)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("read last bill number: %w", err)
	}
	if lastBillNo != "" {
		if err := num.Seed(ctx, numerator.BillConfig(), lastBillNo); err != nil {
			return fmt.Errorf("seed bill sequence: %w", err)
		}
	}

	log.Info("sequences seeded")
	return nil
}
