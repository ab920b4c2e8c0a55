package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{
			name:   "empty",
			values: nil,
			want:   Distribution{},
		},
		{
			name:   "single value",
			values: []float64{4},
			want:   Distribution{Count: 1, Mean: 4, Min: 4, P25: 4, P50: 4, P75: 4, Max: 4},
		},
		{
			name:   "unsorted",
			values: []float64{5, 1, 3, 2, 4},
			want:   Distribution{Count: 5, Mean: 3, Std: 1.5811388300841898, Min: 1, P25: 2, P50: 3, P75: 4, Max: 5},
		},
		{
			name:   "interpolated",
			values: []float64{0, 10, 20, 30},
			want:   Distribution{Count: 4, Mean: 15, Std: 12.909944487358056, Min: 0, P25: 7.5, P50: 15, P75: 22.5, Max: 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.values)
			assert.Equal(t, tt.want.Count, got.Count)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-9)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.P25, got.P25, 1e-9)
			assert.InDelta(t, tt.want.P50, got.P50, 1e-9)
			assert.InDelta(t, tt.want.P75, got.P75, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
		})
	}
}

func TestDescribeDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Describe(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}
