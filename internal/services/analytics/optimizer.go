package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/findosh/quantcore/internal/metrics"
	"github.com/findosh/quantcore/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OptimizerConfig holds per-request optimizer settings
type OptimizerConfig struct {
	Horizon models.Horizon
	Period  string
	// MaxDrawdown is a positive ceiling on historical drawdown; 0 disables it
	MaxDrawdown   float64
	MaxIterations int
	Simulations   SimulationLimits
	// Seed for Monte Carlo draws; 0 picks a time-based seed
	Seed uint64
}

// Optimizer solves allocation problems over one statistics snapshot.
// It is a short-lived, per-request object.
type Optimizer struct {
	snap *Snapshot
	cfg  OptimizerConfig
	log  zerolog.Logger
	now  func() time.Time
}

// NewOptimizer creates an optimizer bound to snap
func NewOptimizer(snap *Snapshot, cfg OptimizerConfig, log zerolog.Logger) *Optimizer {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 2000
	}
	if cfg.Horizon == "" {
		cfg.Horizon = models.DefaultHorizon
	}
	if cfg.Simulations == (SimulationLimits{}) {
		cfg.Simulations = DefaultSimulationLimits()
	}
	return &Optimizer{
		snap: snap,
		cfg:  cfg,
		log:  log.With().Str("component", "optimizer").Logger(),
		now:  time.Now,
	}
}

// Snapshot returns the statistics the optimizer works from
func (o *Optimizer) Snapshot() *Snapshot {
	return o.snap
}

// Optimize solves for weights under strategy and per-ticker bounds. Solver
// failures never surface as errors: the result falls back to equal weight and
// carries a warning. Only bounds naming unknown tickers are rejected.
func (o *Optimizer) Optimize(strategy Strategy, bounds map[string]models.WeightBound) (*models.OptimizationResult, error) {
	tickers := o.snap.Tickers
	known := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		known[t] = true
	}
	var unknown []string
	for t := range bounds {
		if !known[t] {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return nil, validationErrorf("constraints specified for tickers not in portfolio: %v", sortedCopy(unknown))
	}

	if len(tickers) == 1 {
		metrics.Optimizations.WithLabelValues(singleTicker, "direct").Inc()
		return o.result(singleTicker, []float64{1}, false, ""), nil
	}

	constrained := len(bounds) > 0 || o.cfg.MaxDrawdown > 0

	f := objective(strategy, o.snap)
	if f == nil {
		w := equalWeights(len(tickers))
		metrics.Optimizations.WithLabelValues(strategy.Name(), "direct").Inc()
		var warning string
		if violations := o.violations(w, bounds); len(violations) > 0 {
			warning = "Equal weight allocation does not satisfy constraints: " + strings.Join(violations, "; ")
			o.log.Warn().Strs("violations", violations).Msg("equal weight ignores constraints")
		}
		return o.result(strategy.Name(), w, false, warning), nil
	}

	weights, err := o.solveSafely(f, bounds)
	if err != nil {
		o.log.Warn().Err(err).Str("strategy", strategy.Name()).Msg("optimization failed, falling back to equal weight")
		metrics.Optimizations.WithLabelValues(strategy.Name(), "fallback").Inc()
		return o.result(EqualWeight{}.Name(), equalWeights(len(tickers)), false,
			fmt.Sprintf("Optimization failed, using fallback: %v", err)), nil
	}

	metrics.Optimizations.WithLabelValues(strategy.Name(), "solved").Inc()
	return o.result(strategy.Name(), weights, constrained, ""), nil
}

func (o *Optimizer) solveSafely(f func([]float64) float64, bounds map[string]models.WeightBound) (weights []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			weights, err = nil, fmt.Errorf("solver panic: %v", r)
		}
	}()

	perTicker := make([]models.WeightBound, len(o.snap.Tickers))
	for i, t := range o.snap.Tickers {
		if b, ok := bounds[t]; ok {
			perTicker[i] = b
		} else {
			perTicker[i] = models.WeightBound{Min: 0, Max: 1}
		}
	}
	box, err := newBoxSimplex(perTicker)
	if err != nil {
		return nil, err
	}
	return solve(f, o.snap, box, solverSettings{
		maxIterations:   o.cfg.MaxIterations,
		drawdownCeiling: o.cfg.MaxDrawdown,
	})
}

// violations lists the bounds and drawdown ceiling that w breaks
func (o *Optimizer) violations(w []float64, bounds map[string]models.WeightBound) []string {
	var out []string
	for i, t := range o.snap.Tickers {
		b, ok := bounds[t]
		if !ok {
			continue
		}
		c := b.Clamp()
		if w[i] < c.Min-feasibilityTol || w[i] > c.Max+feasibilityTol {
			out = append(out, fmt.Sprintf("%s weight %.4f outside [%.4f, %.4f]", t, w[i], c.Min, c.Max))
		}
	}
	if o.cfg.MaxDrawdown > 0 {
		if dd := -o.snap.HistoricalDrawdown(w); dd > o.cfg.MaxDrawdown+feasibilityTol {
			out = append(out, fmt.Sprintf("drawdown %.4f exceeds ceiling %.4f", dd, o.cfg.MaxDrawdown))
		}
	}
	return out
}

func (o *Optimizer) result(strategy string, w []float64, constrained bool, warning string) *models.OptimizationResult {
	ret, vol, sharpe := o.snap.Performance(w)
	return &models.OptimizationResult{
		ID:                 uuid.New(),
		Strategy:           strategy,
		Weights:            o.snap.WeightMap(w),
		ExpectedReturn:     ret,
		ExpectedVolatility: vol,
		SharpeRatio:        sharpe,
		Period:             o.cfg.Period,
		Horizon:            o.cfg.Horizon,
		Constrained:        constrained,
		Warning:            warning,
		Excluded:           excludedTickers(o.snap),
		OptimizedAt:        o.now().UTC(),
	}
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

func excludedTickers(snap *Snapshot) []string {
	if snap.Series == nil {
		return nil
	}
	return snap.Series.Excluded
}
