package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAdjustToWholeShares(t *testing.T) {
	alloc := AdjustToWholeShares(
		map[string]float64{"AAPL": 0.5, "MSFT": 0.5},
		decimal.NewFromInt(10000),
		map[string]decimal.Decimal{
			"AAPL": decimal.NewFromInt(150),
			"MSFT": decimal.NewFromInt(300),
		},
	)

	// $5000 / $150 = 33.3 and $5000 / $300 = 16.7, both floored
	assert.Equal(t, int64(33), alloc.Shares["AAPL"])
	assert.Equal(t, int64(16), alloc.Shares["MSFT"])
	assert.True(t, alloc.Invested.Equal(decimal.NewFromInt(9750)), alloc.Invested.String())
	assert.True(t, alloc.Cash.Equal(decimal.NewFromInt(250)), alloc.Cash.String())
	assert.InDelta(t, 0.495, alloc.Weights["AAPL"], 1e-12)
	assert.InDelta(t, 0.48, alloc.Weights["MSFT"], 1e-12)
}

func TestAdjustToWholeShares_MissingPrice(t *testing.T) {
	alloc := AdjustToWholeShares(
		map[string]float64{"AAPL": 0.6, "GONE": 0.4},
		decimal.NewFromInt(1000),
		map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(100)},
	)

	assert.Equal(t, int64(6), alloc.Shares["AAPL"])
	assert.Equal(t, int64(0), alloc.Shares["GONE"])
	assert.Zero(t, alloc.Weights["GONE"])
	assert.True(t, alloc.Cash.Equal(decimal.NewFromInt(400)), alloc.Cash.String())
}

func TestAdjustToWholeShares_ZeroValue(t *testing.T) {
	alloc := AdjustToWholeShares(
		map[string]float64{"AAPL": 1},
		decimal.Zero,
		map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(100)},
	)

	assert.Equal(t, int64(0), alloc.Shares["AAPL"])
	assert.Zero(t, alloc.Weights["AAPL"])
	assert.True(t, alloc.Cash.IsZero())
}

func TestAdjustToWholeShares_PriceAboveBudget(t *testing.T) {
	alloc := AdjustToWholeShares(
		map[string]float64{"BRK.A": 1},
		decimal.NewFromInt(5000),
		map[string]decimal.Decimal{"BRK.A": decimal.NewFromInt(600000)},
	)

	assert.Equal(t, int64(0), alloc.Shares["BRK.A"])
	assert.True(t, alloc.Cash.Equal(decimal.NewFromInt(5000)))
}
