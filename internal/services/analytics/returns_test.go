package analytics

import (
	"context"
	"testing"

	"github.com/findosh/quantcore/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnSeries_AlignsOnCommonDates(t *testing.T) {
	a := closesFrom(100, []float64{0.01, 0.02, -0.01, 0.03})
	b := closesFrom(50, []float64{0.02, 0.01, 0.01, -0.02})
	// b has no close on day 2
	b = append(b[:2:2], b[3:]...)

	series, err := NewReturnSeries(map[string][]models.PricePoint{"A": a, "B": b}, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, series.Tickers)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, day0.AddDate(0, 0, 1), series.Dates[0])
	assert.Equal(t, day0.AddDate(0, 0, 3), series.Dates[1])
	assert.Equal(t, day0.AddDate(0, 0, 4), series.Dates[2])

	// B's day-3 return spans the missing day
	assert.InDelta(t, 1.01*1.01-1, series.Column("B")[1], 1e-12)
	assert.InDelta(t, -0.01, series.Column("A")[1], 1e-12)
	assert.Nil(t, series.Column("C"))
}

func TestNewReturnSeries_ExcludesShortHistories(t *testing.T) {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"A": closesFrom(100, []float64{0.01, 0.02}),
		"B": closesFrom(100, nil),
	}, []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, series.Tickers)
	assert.Equal(t, []string{"B", "C"}, series.Excluded)
	assert.Equal(t, 2, series.Len())
}

func TestNewReturnSeries_MissingData(t *testing.T) {
	tests := []struct {
		name      string
		histories map[string][]models.PricePoint
		order     []string
		reason    string
	}{
		{
			name:      "no ticker has data",
			histories: map[string][]models.PricePoint{},
			order:     []string{"A", "B"},
			reason:    "unable to fetch historical data for any tickers",
		},
		{
			name:      "single ticker without data",
			histories: map[string][]models.PricePoint{},
			order:     []string{"A"},
			reason:    "no historical data",
		},
		{
			name: "no overlapping dates",
			histories: map[string][]models.PricePoint{
				"A": closesFrom(100, []float64{0.01, 0.01}),
				"B": {
					{Date: day0.AddDate(0, 1, 0), Close: 10},
					{Date: day0.AddDate(0, 1, 1), Close: 11},
				},
			},
			order:  []string{"A", "B"},
			reason: "no overlapping trading dates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReturnSeries(tt.histories, tt.order)
			require.Error(t, err)
			assert.True(t, IsMissingData(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestNewReturnSeries_UnsortedInput(t *testing.T) {
	points := closesFrom(100, []float64{0.05, -0.02})
	reversed := []models.PricePoint{points[2], points[1], points[0]}

	series, err := NewReturnSeries(map[string][]models.PricePoint{"A": reversed}, []string{"A"})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, series.Column("A")[0], 1e-12)
	assert.InDelta(t, -0.02, series.Column("A")[1], 1e-12)
}

func TestReturnSeries_Weighted(t *testing.T) {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"A": closesFrom(100, []float64{0.10, -0.05}),
		"B": closesFrom(100, []float64{0.02, 0.04}),
	}, []string{"A", "B"})
	require.NoError(t, err)

	got := series.Weighted(map[string]float64{"A": 0.25, "B": 0.75, "Z": 1})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.25*0.10+0.75*0.02, got[0], 1e-12)
	assert.InDelta(t, 0.25*-0.05+0.75*0.04, got[1], 1e-12)

	m := series.Matrix()
	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.InDelta(t, 0.04, m.At(1, 1), 1e-12)
}

func TestBuildReturnSeries_ExcludesFailedFetches(t *testing.T) {
	provider := newFakeProvider().
		withTicker("AAPL", 175, closesFrom(170, []float64{0.01, 0.02, -0.01})).
		withTicker("MSFT", 375, closesFrom(370, []float64{0.00, 0.01, 0.02}))
	provider.failures["TSLA"] = errNoHistory

	series, err := BuildReturnSeries(context.Background(), provider, []string{"AAPL", "MSFT", "TSLA"},
		models.PeriodWindow(models.Period1Year), 0, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, series.Tickers)
	assert.Equal(t, []string{"TSLA"}, series.Excluded)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 1, provider.historyCalls("TSLA"))
}

func TestBuildReturnSeries_CancelledContext(t *testing.T) {
	provider := newFakeProvider().
		withTicker("AAPL", 175, closesFrom(170, []float64{0.01, 0.02}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildReturnSeries(ctx, provider, []string{"AAPL"}, models.Window{}, 0, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
