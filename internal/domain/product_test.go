package domain

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestProduct_UnitPriceCents(t *testing.T) {
	p := Product{PriceCents: 2000}
	assert.Equal(t, int64(2000), p.UnitPriceCents())

	p.DiscountedPriceCents = pgtype.Int8{Int64: 1500, Valid: true}
	assert.Equal(t, int64(1500), p.UnitPriceCents())
}

func TestProduct_Sellable(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		available bool
		want      bool
	}{
		{"active and available", true, true, true},
		{"inactive", false, true, false},
		{"unavailable", true, false, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{IsActive: tt.active, IsAvailable: tt.available}
			assert.Equal(t, tt.want, p.Sellable())
		})
	}
}
