package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"max_sharpe", "min_volatility", "equal_weight", "equal_risk"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	_, err := ParseStrategy("yolo")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "yolo")
}

func TestObjective(t *testing.T) {
	snap := manualSnapshot([]string{"A", "B"}, []float64{0.10, 0.20}, []float64{
		0.04, 0,
		0, 0.09,
	})
	w := []float64{0.5, 0.5}
	_, vol, sharpe := snap.Performance(w)

	assert.Nil(t, objective(EqualWeight{}, snap))
	assert.InDelta(t, -sharpe, objective(MaxSharpe{}, snap)(w), 1e-12)
	assert.InDelta(t, vol, objective(MinVolatility{}, snap)(w), 1e-12)

	// risk contributions 0.01/σ and 0.0225/σ are unequal
	assert.Greater(t, objective(EqualRisk{}, snap)(w), 0.0)
	// w ∝ 1/σ equalizes them
	assert.InDelta(t, 0, objective(EqualRisk{}, snap)([]float64{0.6, 0.4}), 1e-12)
}
