package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/domain/catalogs/product"
)

func TestToAdjustment_NormalizesTypeCase(t *testing.T) {
	tests := []struct {
		in   string
		want product.AdjustmentType
	}{
		{"increase", product.AdjustIncrease},
		{"Increase", product.AdjustIncrease},
		{"DECREASE", product.AdjustDecrease},
		{"Decrease", product.AdjustDecrease},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req := AdjustStockRequest{
				IdentifierCode: "A1B2C3D4",
				AdjustmentType: tt.in,
				Quantity:       3,
				Reason:         "stock count",
			}

			adj := req.ToAdjustment()
			assert.Equal(t, tt.want, adj.Type)
			require.NoError(t, adj.Validate())
		})
	}
}
