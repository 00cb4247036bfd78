package analytics

import (
	"math"
	"testing"

	"github.com/findosh/quantcore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSnapshot_ScalesWithHorizon(t *testing.T) {
	series := threeAssetSeries()

	half, err := ComputeSnapshot(series, models.Horizon6Month.TradingDays(), 0.04)
	require.NoError(t, err)
	two, err := ComputeSnapshot(series, models.Horizon2Year.TradingDays(), 0.04)
	require.NoError(t, err)

	w := equalWeights(3)
	retHalf, volHalf, _ := half.Performance(w)
	retTwo, volTwo, _ := two.Performance(w)

	assert.InDelta(t, 4, retTwo/retHalf, 1e-9)
	assert.InDelta(t, 2, volTwo/volHalf, 1e-9)
	assert.Equal(t, 126, half.Days)
	assert.Equal(t, series.Tickers, half.Tickers)
}

func TestComputeSnapshot_MatchesDailyStatistics(t *testing.T) {
	series := threeAssetSeries()
	snap, err := ComputeSnapshot(series, 252, 0.04)
	require.NoError(t, err)

	aapl := series.Column("AAPL")
	var mean float64
	for _, r := range aapl {
		mean += r
	}
	mean /= float64(len(aapl))
	var ss float64
	for _, r := range aapl {
		ss += (r - mean) * (r - mean)
	}

	assert.InDelta(t, mean*252, snap.Mean[0], 1e-12)
	assert.InDelta(t, ss/float64(len(aapl)-1)*252, snap.Cov.At(0, 0), 1e-12)
	assert.InDelta(t, snap.Cov.At(0, 1), snap.Cov.At(1, 0), 1e-15)
}

func TestComputeSnapshot_RequiresTwoObservations(t *testing.T) {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"A": closesFrom(100, []float64{0.01}),
		"B": closesFrom(100, []float64{0.02}),
	}, []string{"A", "B"})
	require.NoError(t, err)

	_, err = ComputeSnapshot(series, 252, 0.04)
	require.Error(t, err)
	assert.True(t, IsMissingData(err))

	_, err = ComputeSnapshot(nil, 252, 0.04)
	assert.True(t, IsMissingData(err))
}

func TestSnapshot_Performance(t *testing.T) {
	snap := manualSnapshot([]string{"A", "B"}, []float64{0.10, 0.20}, []float64{
		0.04, 0,
		0, 0.09,
	})

	ret, vol, sharpe := snap.Performance([]float64{0.5, 0.5})
	assert.InDelta(t, 0.15, ret, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0325), vol, 1e-12)
	assert.InDelta(t, 0.11/math.Sqrt(0.0325), sharpe, 1e-12)
}

func TestSnapshot_RiskContributionsSumToVolatility(t *testing.T) {
	series := threeAssetSeries()
	snap, err := ComputeSnapshot(series, 252, 0.04)
	require.NoError(t, err)

	w := []float64{0.2, 0.3, 0.5}
	var total float64
	for _, c := range snap.RiskContributions(w) {
		total += c
	}
	_, vol, _ := snap.Performance(w)
	assert.InDelta(t, vol, total, 1e-12)
}

func TestSnapshot_WeightVectorRoundTrip(t *testing.T) {
	snap := manualSnapshot([]string{"A", "B", "C"}, []float64{0, 0, 0}, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})

	w := snap.WeightVector(map[string]float64{"C": 0.7, "A": 0.3})
	assert.Equal(t, []float64{0.3, 0, 0.7}, w)
	assert.Equal(t, map[string]float64{"A": 0.3, "B": 0, "C": 0.7}, snap.WeightMap(w))
}

func TestSnapshot_HistoricalDrawdown(t *testing.T) {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"A": closesFrom(100, []float64{0.10, -0.20, 0.05}),
		"B": closesFrom(100, []float64{0.00, 0.00, 0.00}),
	}, []string{"A", "B"})
	require.NoError(t, err)
	snap, err := ComputeSnapshot(series, 252, 0.04)
	require.NoError(t, err)

	assert.InDelta(t, -0.20, snap.HistoricalDrawdown([]float64{1, 0}), 1e-12)
	assert.InDelta(t, -0.10, snap.HistoricalDrawdown([]float64{0.5, 0.5}), 1e-12)
	assert.Zero(t, snap.HistoricalDrawdown([]float64{0, 1}))
}
