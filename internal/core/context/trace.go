// Package context carries request-scoped values (trace, actor) used across layers.
package context

import (
	"context"

	"wareflow/internal/core/id"
)

// TraceInfo holds correlation identifiers for a request.
type TraceInfo struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// WithTrace adds trace info to context.
func WithTrace(ctx context.Context, info *TraceInfo) context.Context {
	return context.WithValue(ctx, traceKey{}, info)
}

// GetTrace returns trace info from context or nil.
func GetTrace(ctx context.Context) *TraceInfo {
	if t, ok := ctx.Value(traceKey{}).(*TraceInfo); ok {
		return t
	}
	return nil
}

// NewTrace creates trace info with generated identifiers.
func NewTrace() *TraceInfo {
	return &TraceInfo{
		TraceID:   id.New().String(),
		RequestID: id.New().String(),
	}
}
