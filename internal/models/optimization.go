package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeightBound is a caller-supplied per-ticker weight range
type WeightBound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp forces the bound into a valid, non-empty range inside [0,1]
func (b WeightBound) Clamp() WeightBound {
	lo := clampUnit(b.Min)
	hi := b.Max
	if hi < lo {
		hi = lo
	}
	if hi > 1 {
		hi = 1
	}
	return WeightBound{Min: lo, Max: hi}
}

func clampUnit(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// OptimizationResult is the outcome of one optimizer run.
// Expected figures are scaled to Horizon, not to the historical Period.
type OptimizationResult struct {
	ID                 uuid.UUID          `json:"id"`
	Strategy           string             `json:"strategy"`
	Weights            map[string]float64 `json:"weights"`
	ExpectedReturn     float64            `json:"expected_return"`
	ExpectedVolatility float64            `json:"expected_volatility"`
	SharpeRatio        float64            `json:"sharpe_ratio"`
	Period             string             `json:"period"`
	Horizon            Horizon            `json:"target_duration"`
	Constrained        bool               `json:"constrained"`
	WholeShares        bool               `json:"whole_shares"`
	Shares             map[string]int64   `json:"shares,omitempty"`
	Cash               *decimal.Decimal   `json:"cash,omitempty"`
	Warning            string             `json:"warning,omitempty"`
	MonteCarlo         *MonteCarloResult  `json:"monte_carlo,omitempty"`
	CurrentAllocation  map[string]float64 `json:"current_allocation,omitempty"`
	Rebalancing        map[string]float64 `json:"rebalancing_needed,omitempty"`
	Excluded           []string           `json:"excluded_tickers,omitempty"`
	OptimizedAt        time.Time          `json:"optimized_at"`
}

// WeightSum returns the sum of all weights
func (r *OptimizationResult) WeightSum() float64 {
	var sum float64
	for _, w := range r.Weights {
		sum += w
	}
	return sum
}

// SimulationMethod identifies how Monte Carlo draws were generated
type SimulationMethod string

const (
	SimulationCholesky SimulationMethod = "cholesky"
	SimulationSimple   SimulationMethod = "simple"
)

// ConfidenceInterval holds the lower/upper simulated return bounds
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MonteCarloResult summarizes the simulated return distribution at a horizon
type MonteCarloResult struct {
	Method             SimulationMethod   `json:"method"`
	Simulations        int                `json:"n_simulations"`
	ConfidenceLevel    int                `json:"confidence_level"`
	ExpectedReturn     float64            `json:"expected_return"`
	MedianReturn       float64            `json:"median_return"`
	StdDeviation       float64            `json:"std_deviation"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	ProbabilityOfLoss  float64            `json:"probability_of_loss"`
	Skewness           float64            `json:"skewness"`
	Kurtosis           float64            `json:"kurtosis"`
	Horizon            Horizon            `json:"target_duration"`
}
