package analytics

import (
	"context"
	"time"

	"github.com/findosh/quantcore/internal/metrics"
	"github.com/findosh/quantcore/internal/models"
	"github.com/shopspring/decimal"
)

// minAnalysisTickers is the fewest distinct tickers that yield a correlation matrix
const minAnalysisTickers = 2

// Analyze computes realized risk and performance for holdings over window.
// Return, volatility and Sharpe use the fixed trading-day convention regardless
// of the window length; VaR95 is the 5th percentile of daily portfolio returns.
func (s *Service) Analyze(ctx context.Context, holdings []models.Holding, window models.Window) (*models.AnalysisResult, error) {
	start := time.Now()

	if err := validateHoldings(holdings); err != nil {
		return nil, err
	}
	tickers := models.DistinctTickers(holdings)
	if len(tickers) < minAnalysisTickers {
		return nil, validationErrorf("portfolio must have at least %d different holdings for analysis", minAnalysisTickers)
	}

	val := s.value(ctx, holdings)

	series, err := BuildReturnSeries(ctx, s.provider, tickers, window, s.opts.FetchTimeout, s.log)
	if err != nil {
		return nil, err
	}
	if !val.total.IsPositive() {
		return nil, validationErrorf("portfolio has zero value")
	}
	if series.Len() < 2 {
		return nil, &MissingDataError{Tickers: series.Tickers, Reason: "not enough aligned observations for analysis"}
	}

	weights := val.weights()
	daily := series.Weighted(weights)

	days := s.opts.Conventions.TradingDaysPerYear
	annualReturn := AnnualizedReturn(daily, days)
	volatility := AnnualizedVolatility(daily, days)

	result := &models.AnalysisResult{
		TotalValue:        val.total.Round(2),
		AnnualReturn:      annualReturn,
		Volatility:        volatility,
		SharpeRatio:       SharpeRatio(annualReturn, volatility, s.opts.Conventions.RiskFreeRate),
		MaxDrawdown:       MaxDrawdown(daily),
		VaR95:             Percentile(daily, 5),
		CorrelationMatrix: CorrelationMatrix(series),
		Holdings:          holdingValues(holdings, val, weights),
		Excluded:          mergeExcluded(series.Excluded, val.unpriced),
		Observations:      series.Len(),
		Period:            window.Label(),
		CalculatedAt:      s.now().UTC(),
	}

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Strs("tickers", series.Tickers).
		Int("observations", series.Len()).
		Float64("sharpe", result.SharpeRatio).
		Msg("portfolio analyzed")

	return result, nil
}

func holdingValues(holdings []models.Holding, val valuation, weights map[string]float64) []models.HoldingValue {
	costs := make(map[string]decimal.Decimal, len(val.tickers))
	for _, h := range holdings {
		t := models.NormalizeTicker(h.Ticker)
		costs[t] = costs[t].Add(h.CostBasis())
	}

	out := make([]models.HoldingValue, 0, len(val.tickers))
	for _, t := range val.tickers {
		hv := models.HoldingValue{
			Ticker:       t,
			Quantity:     val.quantities[t],
			CurrentPrice: val.prices[t],
			Value:        val.values[t].Round(2),
			Weight:       weights[t],
			GainLossPct:  models.GainLossPercent(val.values[t], costs[t]),
		}
		out = append(out, hv)
	}
	return out
}

func mergeExcluded(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return sortedCopy(out)
}
