package qtoitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestTotalCost(t *testing.T) {
	tests := []struct {
		name     string
		quantity *float64
		unitRate *float64
		want     *float64
	}{
		{"both_present", f(10), f(150), f(1500)},
		{"fractional", f(2.5), f(4.2), f(2.5 * 4.2)},
		{"zero_quantity", f(0), f(99), f(0)},
		{"quantity_missing", nil, f(150), nil},
		{"rate_missing", f(10), nil, nil},
		{"both_missing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalCost(tt.quantity, tt.unitRate)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSumTotalCostTreatsNilAsZero(t *testing.T) {
	items := []Item{{TotalCost: f(100)}, {TotalCost: nil}, {TotalCost: f(25.5)}}

	assert.Equal(t, 125.5, SumTotalCost(items))
	assert.Equal(t, 0.0, SumTotalCost(nil))
}

func TestApplyIgnoresClientTotals(t *testing.T) {
	it := NewFromRequest("p1", Request{Description: " Rebar ", Quantity: f(3), UnitRate: f(7)}, "u1")

	require.NotNil(t, it.TotalCost)
	assert.Equal(t, 21.0, *it.TotalCost)
	assert.Equal(t, "Rebar", it.Description)

	it.Apply(Request{Description: "Rebar", Quantity: nil, UnitRate: f(7)})
	assert.Nil(t, it.TotalCost)
}
