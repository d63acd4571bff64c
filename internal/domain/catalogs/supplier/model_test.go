package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"upper-cases", "acme traders", "ACME TRADERS"},
		{"trims whitespace", "  Acme  ", "ACME"},
		{"rewrites trailing &CO", "sharma &co", "SHARMA & Co"},
		{"rewrites &CO without space", "sharma&co", "SHARMA & Co"},
		{"leaves inner &CO alone", "B&CO TRADING", "B&CO TRADING"},
		{"space before CO is not rewritten", "GLOBAL & Co", "GLOBAL & CO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNew_NormalizesNameAndCode(t *testing.T) {
	s := New("  metro supplies &co ", " mtro ")

	assert.Equal(t, "METRO SUPPLIES & Co", s.Name)
	assert.Equal(t, "MTRO", s.Code)
	assert.False(t, id.IsNil(s.ID))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	valid := New("Acme Traders", "ACME")
	require.NoError(t, valid.Validate(ctx))

	tests := []struct {
		name   string
		mutate func(*Supplier)
		field  string
	}{
		{"empty name", func(s *Supplier) { s.Name = "  " }, "supplierName"},
		{"code too short", func(s *Supplier) { s.Code = "ACM" }, "supplierCode"},
		{"code with digits", func(s *Supplier) { s.Code = "AC1E" }, "supplierCode"},
		{"bad email", func(s *Supplier) { s.Email = "not-an-email" }, "email"},
		{"bad pincode", func(s *Supplier) { s.Pincode = "12" }, "pincode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("Acme Traders", "ACME")
			tt.mutate(s)

			err := s.Validate(ctx)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}
