package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	products, err := LoadCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, products)

	seen := make(map[Category]bool)
	for _, p := range products {
		assert.True(t, p.Active, p.Name)
		assert.True(t, p.Unit.IsValid(), p.Name)
		seen[p.Category] = true
	}
	for _, c := range Categories {
		assert.True(t, seen[c], "category %s has no products", c)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad category", "products:\n  - {name: Bife, category: meat}\n"},
		{"bad unit", "products:\n  - {name: Papa, category: vegetables, unit: box}\n"},
		{"duplicate", "products:\n  - {name: Papa, category: vegetables}\n  - {name: Papa, category: vegetables}\n"},
		{"malformed", "products: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	products, err := parseCatalog([]byte("products:\n  - {name: Choclo, category: vegetables, unit: unit, order: 3}\n"))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, UnitPiece, products[0].Unit)
	assert.Equal(t, 3, products[0].SortOrder)
}
