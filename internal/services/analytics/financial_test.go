package analytics

import (
	"math"
	"testing"

	"github.com/findosh/quantcore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedReturnAndVolatility(t *testing.T) {
	daily := []float64{0.01, -0.01, 0.02}

	assert.InDelta(t, (0.02/3)*252, AnnualizedReturn(daily, 252), 1e-12)

	// sample variance: deviations 1/300, -5/300, 4/300
	variance := (1.0 + 25 + 16) / (300 * 300) / 2
	assert.InDelta(t, math.Sqrt(variance*252), AnnualizedVolatility(daily, 252), 1e-12)

	assert.Zero(t, AnnualizedReturn(nil, 252))
	assert.Zero(t, AnnualizedVolatility([]float64{0.01}, 252))
}

func TestSharpeRatio(t *testing.T) {
	assert.InDelta(t, 0.5, SharpeRatio(0.14, 0.2, 0.04), 1e-12)
	assert.Zero(t, SharpeRatio(0.14, 0, 0.04))
	assert.Zero(t, SharpeRatio(0.14, math.NaN(), 0.04))
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		daily []float64
		want  float64
	}{
		{"peak then trough", []float64{0.10, -0.20, 0.05, -0.10}, (1.1*0.8*1.05*0.9 - 1.1) / 1.1},
		{"only gains", []float64{0.01, 0.02, 0.03}, 0},
		{"consecutive losses", []float64{-0.10, -0.10}, -0.10},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.daily)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}

	assert.InDelta(t, 3, Percentile(values, 50), 1e-12)
	assert.InDelta(t, 1.2, Percentile(values, 5), 1e-12)
	assert.InDelta(t, 1, Percentile(values, 0), 1e-12)
	assert.InDelta(t, 5, Percentile(values, 100), 1e-12)
	assert.InDelta(t, 4.6, Percentile(values, 90), 1e-12)
	assert.Equal(t, 7.0, Percentile([]float64{7}, 5))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))

	// input is not reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestCorrelationMatrix(t *testing.T) {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"A": closesFrom(100, []float64{0.01, -0.02, 0.03, 0.01}),
		"B": closesFrom(50, []float64{0.02, -0.04, 0.06, 0.02}),
		"C": closesFrom(10, []float64{0, 0, 0, 0}),
	}, []string{"A", "B", "C"})
	require.NoError(t, err)

	corr := CorrelationMatrix(series)

	assert.InDelta(t, 1, corr["A"]["B"], 1e-9)
	assert.InDelta(t, corr["A"]["B"], corr["B"]["A"], 1e-12)
	for _, ticker := range []string{"A", "B", "C"} {
		assert.Equal(t, 1.0, corr[ticker][ticker])
	}
	// constant column has undefined correlation
	assert.Equal(t, 0.0, corr["A"]["C"])
	assert.Equal(t, 0.0, corr["C"]["B"])
}
