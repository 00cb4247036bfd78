package analytics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Conventions are the market assumptions shared by the analyzer and optimizer
type Conventions struct {
	TradingDaysPerYear int
	RiskFreeRate       float64
}

// DefaultConventions returns 252 trading days and a 4% risk-free rate
func DefaultConventions() Conventions {
	return Conventions{
		TradingDaysPerYear: 252,
		RiskFreeRate:       0.04,
	}
}

// Snapshot is the mean-return vector and covariance matrix of a return series,
// both scaled linearly to a horizon of Days trading days. It is computed once
// per request and handed to every consumer.
type Snapshot struct {
	Series       *ReturnSeries
	Tickers      []string
	Mean         []float64
	Cov          *mat.SymDense
	Days         int
	RiskFreeRate float64

	returns *mat.Dense
}

// ComputeSnapshot scales daily mean and sample covariance (n-1) by days
func ComputeSnapshot(series *ReturnSeries, days int, riskFreeRate float64) (*Snapshot, error) {
	if series == nil || series.Len() < 2 {
		return nil, &MissingDataError{Reason: "not enough aligned observations to estimate statistics"}
	}

	n := len(series.Tickers)
	scale := float64(days)

	mean := make([]float64, n)
	for i, col := range series.columns {
		mean[i] = stat.Mean(col, nil) * scale
	}

	returns := series.Matrix()
	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, returns, nil)
	cov.ScaleSym(scale, cov)

	return &Snapshot{
		Series:       series,
		Tickers:      series.Tickers,
		Mean:         mean,
		Cov:          cov,
		Days:         days,
		RiskFreeRate: riskFreeRate,
		returns:      returns,
	}, nil
}

// Performance returns expected return, volatility and Sharpe for w at the
// snapshot horizon.
func (s *Snapshot) Performance(w []float64) (ret, vol, sharpe float64) {
	for i, wi := range w {
		ret += wi * s.Mean[i]
	}
	vol = math.Sqrt(s.Variance(w))
	return ret, vol, SharpeRatio(ret, vol, s.RiskFreeRate)
}

// Variance returns wᵀΣw, floored at zero
func (s *Snapshot) Variance(w []float64) float64 {
	v := mat.NewVecDense(len(w), w)
	variance := mat.Inner(v, s.Cov, v)
	if variance < 0 {
		return 0
	}
	return variance
}

// RiskContributions returns w_i·(Σw)_i / σ_p for each asset
func (s *Snapshot) RiskContributions(w []float64) []float64 {
	n := len(w)
	contrib := make([]float64, n)
	vol := math.Sqrt(s.Variance(w))
	if vol == 0 {
		return contrib
	}
	var marginal mat.VecDense
	marginal.MulVec(s.Cov, mat.NewVecDense(n, w))
	for i := range contrib {
		contrib[i] = w[i] * marginal.AtVec(i) / vol
	}
	return contrib
}

// WeightVector orders a weight map by the snapshot tickers; missing tickers get zero
func (s *Snapshot) WeightVector(weights map[string]float64) []float64 {
	w := make([]float64, len(s.Tickers))
	for i, t := range s.Tickers {
		w[i] = weights[t]
	}
	return w
}

// WeightMap is the inverse of WeightVector
func (s *Snapshot) WeightMap(w []float64) map[string]float64 {
	m := make(map[string]float64, len(w))
	for i, t := range s.Tickers {
		m[t] = w[i]
	}
	return m
}

// HistoricalDrawdown is the max drawdown of the weighted historical return path
func (s *Snapshot) HistoricalDrawdown(w []float64) float64 {
	if s.Series == nil || s.Series.Len() == 0 {
		return 0
	}
	returns := s.returns
	if returns == nil {
		returns = s.Series.Matrix()
	}
	var path mat.VecDense
	path.MulVec(returns, mat.NewVecDense(len(w), w))
	return MaxDrawdown(path.RawVector().Data)
}
