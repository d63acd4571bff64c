package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
)

type MockCatalog struct {
	entity.BaseEntity
	entity.Lifecycle
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at",
		"is_deleted", "deleted_at", "deleted_by", "code", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	cat := MockCatalog{
		BaseEntity: entity.BaseEntity{
			ID:        id.New(),
			Version:   5,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Lifecycle: entity.Lifecycle{
			IsDeleted: true,
			DeletedAt: &now,
			DeletedBy: "admin",
		},
		Code: "ACME",
		Name: "Acme Supplies",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, true, m["is_deleted"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, "admin", m["deleted_by"])
	assert.Equal(t, "ACME", m["code"])
	assert.Equal(t, "Acme Supplies", m["name"])
}
