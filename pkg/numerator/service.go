// Package numerator provides sequential identifier generation for documents.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all identifiers (e.g., "WF", "Bill")
	Prefix string

	// PadWidth is the minimum number width (default 4)
	PadWidth int
}

// EntryConfig numbers warehouse entries: WF-0001, WF-0002, ...
func EntryConfig() Config {
	return Config{Prefix: "WF", PadWidth: 4}
}

// BillConfig numbers generated bills: Bill-00001, Bill-00002, ...
func BillConfig() Config {
	return Config{Prefix: "Bill", PadWidth: 5}
}

// Service generates sequential identifiers backed by a database counter.
// Each prefix has its own row in sys_sequences; the counter is advanced
// with a single UPSERT so concurrent callers never observe the same value.
type Service struct {
	querier Querier
}

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Next generates the next identifier for the given config.
// Pattern: PREFIX-NNNN (e.g., WF-0001).
func (s *Service) Next(ctx context.Context, cfg Config) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, cfg.Prefix).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", cfg.Prefix, err)
	}

	return Format(cfg, num), nil
}

// Seed initializes the counter from the most recent identifier, typically
// during first run against an existing dataset. A later Next call continues
// from the seeded value. No-op when the existing counter is already ahead.
func (s *Service) Seed(ctx context.Context, cfg Config, lastIdentifier string) error {
	val := ParseSuffix(lastIdentifier)

	var result int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET current_val = GREATEST(sys_sequences.current_val, $2)
        RETURNING current_val
	`, cfg.Prefix, val).Scan(&result)
	if err != nil {
		return fmt.Errorf("seed %s: %w", cfg.Prefix, err)
	}
	return nil
}

// Format renders a counter value as an identifier.
func Format(cfg Config, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseSuffix extracts the numeric part from a formatted identifier.
// An identifier with a missing or unparseable suffix yields 0, so the
// sequence restarts from 1 instead of failing.
func ParseSuffix(identifier string) int64 {
	idx := strings.LastIndex(identifier, "-")
	if idx < 0 || idx == len(identifier)-1 {
		return 0
	}

	num, err := strconv.ParseInt(identifier[idx+1:], 10, 64)
	if err != nil || num < 0 {
		return 0
	}
	return num
}
