package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"wareflow/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a stored
// details payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const auditTable = "sys_audit_log"

// Payloads above this size are stored zstd-compressed.
const auditCompressThreshold = 10 * 1024

// AuditRepo implements audit.Repository over the sys_audit_log table.
type AuditRepo struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(txManager *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// Append inserts one audit record. The log is append-only.
func (r *AuditRepo) Append(ctx context.Context, rec *audit.Record) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	var compressed []byte
	algo := CompressionNone
	if len(details) > auditCompressThreshold {
		compressed = r.encoder.EncodeAll(details, nil)
		details = nil
		algo = CompressionZstd
	}

	const sql = `
		INSERT INTO sys_audit_log (
			id, actor_id, action, type, date,
			details, details_compressed, compression_algo,
			performed_by, role
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		rec.ID, rec.ActorID, rec.Action, rec.Type, rec.Date,
		details, compressed, algo,
		rec.PerformedBy, rec.Role,
	)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	return nil
}

// Query retrieves audit records matching the filter, newest first.
func (r *AuditRepo) Query(ctx context.Context, f audit.Filter) ([]audit.Record, error) {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"id", "actor_id", "action", "type", "date",
			"details", "details_compressed", "compression_algo",
			"performed_by", "role",
		).
		From(auditTable)

	if f.ActorID != nil {
		q = q.Where(squirrel.Eq{"actor_id": *f.ActorID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": f.Type})
	}
	if f.DetailKey != "" {
		q = q.Where(squirrel.Expr("details ->> ? = ?", f.DetailKey, f.DetailValue))
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.To})
	}

	q = q.OrderBy("date DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			rec        audit.Record
			details    []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(
			&rec.ID, &rec.ActorID, &rec.Action, &rec.Type, &rec.Date,
			&details, &compressed, &algo,
			&rec.PerformedBy, &rec.Role,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if algo == CompressionZstd {
			details, err = r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress details: %w", err)
			}
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return records, nil
}
