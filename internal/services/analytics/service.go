package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Options configures the analytics service
type Options struct {
	Conventions   Conventions
	FetchTimeout  time.Duration
	MaxIterations int
	Simulations   SimulationLimits
	// Seed fixes Monte Carlo draws; 0 seeds from the clock
	Seed uint64
}

// Service runs portfolio analysis and optimization against a price provider
type Service struct {
	provider PriceProvider
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a new analytics service
func NewService(provider PriceProvider, opts Options, log zerolog.Logger) *Service {
	if opts.Conventions == (Conventions{}) {
		opts.Conventions = DefaultConventions()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Simulations == (SimulationLimits{}) {
		opts.Simulations = DefaultSimulationLimits()
	}
	return &Service{
		provider: provider,
		opts:     opts,
		log:      log.With().Str("component", "analytics").Logger(),
		now:      time.Now,
	}
}

// Statistics builds the return series for tickers over window and computes the
// snapshot scaled to horizon. This is the single fetch-and-compute step of an
// optimization request.
func (s *Service) Statistics(ctx context.Context, tickers []string, window models.Window, horizon models.Horizon) (*Snapshot, error) {
	series, err := BuildReturnSeries(ctx, s.provider, tickers, window, s.opts.FetchTimeout, s.log)
	if err != nil {
		return nil, err
	}
	return ComputeSnapshot(series, horizon.TradingDays(), s.opts.Conventions.RiskFreeRate)
}

// SimulationRequest asks for a Monte Carlo projection of the optimized weights
type SimulationRequest struct {
	Simulations     int
	ConfidenceLevel int
}

// OptimizeRequest describes one optimization call
type OptimizeRequest struct {
	Holdings    []models.Holding
	Strategy    Strategy
	Window      models.Window
	Horizon     models.Horizon
	Bounds      map[string]models.WeightBound
	MaxDrawdown float64
	// WholeShares is implied for accounts that disallow fractional shares
	WholeShares bool
	AccountType models.AccountType
	MonteCarlo  *SimulationRequest
}

// Optimize computes the statistics snapshot once, solves for weights, then
// applies whole-share rounding, the Monte Carlo projection and the comparison
// with the current allocation as requested.
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (*models.OptimizationResult, error) {
	if err := validateHoldings(req.Holdings); err != nil {
		return nil, err
	}
	tickers := models.DistinctTickers(req.Holdings)
	if len(tickers) == 0 {
		return nil, validationErrorf("portfolio has no holdings")
	}
	if req.Strategy == nil {
		req.Strategy = MaxSharpe{}
	}
	if req.Horizon == "" {
		req.Horizon = models.DefaultHorizon
	}
	if req.MaxDrawdown < 0 || req.MaxDrawdown >= 1 {
		return nil, validationErrorf("max drawdown must be between 0 and 1, got %v", req.MaxDrawdown)
	}
	if err := validateBoundTickers(req.Bounds, tickers); err != nil {
		return nil, err
	}
	if req.MonteCarlo != nil {
		if err := ValidateConfidenceLevel(req.MonteCarlo.ConfidenceLevel); err != nil {
			return nil, err
		}
	}

	snap, err := s.Statistics(ctx, tickers, req.Window, req.Horizon)
	if err != nil {
		return nil, err
	}

	optimizer := NewOptimizer(snap, OptimizerConfig{
		Horizon:       req.Horizon,
		Period:        req.Window.Label(),
		MaxDrawdown:   req.MaxDrawdown,
		MaxIterations: s.opts.MaxIterations,
		Simulations:   s.opts.Simulations,
		Seed:          s.opts.Seed,
	}, s.log)

	// Bounds for tickers dropped for missing data no longer apply
	bounds := make(map[string]models.WeightBound, len(req.Bounds))
	for t, b := range normalizeBounds(req.Bounds) {
		if containsString(snap.Tickers, t) {
			bounds[t] = b
		}
	}

	result, err := optimizer.Optimize(req.Strategy, bounds)
	if err != nil {
		return nil, err
	}

	val := s.value(ctx, req.Holdings)

	if req.WholeShares || req.AccountType.RequiresWholeShares() {
		alloc := AdjustToWholeShares(result.Weights, val.total, val.prices)
		result.Weights = alloc.Weights
		result.Shares = alloc.Shares
		cash := alloc.Cash.Round(2)
		result.Cash = &cash
		result.WholeShares = true
		result.ExpectedReturn, result.ExpectedVolatility, result.SharpeRatio = snap.Performance(snap.WeightVector(alloc.Weights))
	}

	if req.MonteCarlo != nil {
		mc, err := optimizer.Simulate(result.Weights, req.MonteCarlo.Simulations, req.MonteCarlo.ConfidenceLevel)
		if err != nil {
			return nil, err
		}
		result.MonteCarlo = mc
	}

	if current := val.weights(); len(current) > 0 {
		result.CurrentAllocation = current
		result.Rebalancing = make(map[string]float64, len(tickers))
		for _, t := range tickers {
			result.Rebalancing[t] = result.Weights[t] - current[t]
		}
	}

	return result, nil
}

// CurrentAllocation returns the value weight of each ticker at latest prices
func (s *Service) CurrentAllocation(ctx context.Context, holdings []models.Holding) (map[string]float64, error) {
	if err := validateHoldings(holdings); err != nil {
		return nil, err
	}
	val := s.value(ctx, holdings)
	if !val.total.IsPositive() {
		return nil, validationErrorf("portfolio has zero value")
	}
	return val.weights(), nil
}

// valuation is the current market value of a set of holdings
type valuation struct {
	tickers    []string
	quantities map[string]decimal.Decimal
	prices     map[string]decimal.Decimal
	values     map[string]decimal.Decimal
	total      decimal.Decimal
	unpriced   []string
}

func (s *Service) value(ctx context.Context, holdings []models.Holding) valuation {
	tickers := models.DistinctTickers(holdings)

	priceCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	prices := s.provider.LatestPrices(priceCtx, tickers)

	val := valuation{
		tickers:    tickers,
		quantities: models.QuantityByTicker(holdings),
		prices:     make(map[string]decimal.Decimal, len(tickers)),
		values:     make(map[string]decimal.Decimal, len(tickers)),
		total:      decimal.Zero,
	}
	for _, t := range tickers {
		price, ok := prices[t]
		if !ok || !price.IsPositive() {
			val.unpriced = append(val.unpriced, t)
			val.values[t] = decimal.Zero
			continue
		}
		val.prices[t] = price
		val.values[t] = val.quantities[t].Mul(price)
		val.total = val.total.Add(val.values[t])
	}
	if len(val.unpriced) > 0 {
		s.log.Warn().Strs("tickers", val.unpriced).Msg("latest price unavailable")
	}
	return val
}

func (v valuation) weights() map[string]float64 {
	if !v.total.IsPositive() {
		return nil
	}
	w := make(map[string]float64, len(v.tickers))
	for _, t := range v.tickers {
		w[t] = v.values[t].Div(v.total).InexactFloat64()
	}
	return w
}

func validateHoldings(holdings []models.Holding) error {
	for _, h := range holdings {
		if err := h.Validate(); err != nil {
			return validationErrorf("invalid holding %q: %v", h.Ticker, err)
		}
	}
	return nil
}

func normalizeBounds(bounds map[string]models.WeightBound) map[string]models.WeightBound {
	out := make(map[string]models.WeightBound, len(bounds))
	for t, b := range bounds {
		out[models.NormalizeTicker(t)] = b
	}
	return out
}

func validateBoundTickers(bounds map[string]models.WeightBound, tickers []string) error {
	var unknown []string
	for t := range normalizeBounds(bounds) {
		if !containsString(tickers, t) {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return validationErrorf("constraints specified for tickers not in portfolio: %v", sortedCopy(unknown))
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
