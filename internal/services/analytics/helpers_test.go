package analytics

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

var errNoHistory = errors.New("no history")

// fakeProvider serves canned prices and histories and counts history calls
type fakeProvider struct {
	mu        sync.Mutex
	prices    map[string]decimal.Decimal
	histories map[string][]models.PricePoint
	failures  map[string]error
	calls     map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		prices:    make(map[string]decimal.Decimal),
		histories: make(map[string][]models.PricePoint),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeProvider) withTicker(ticker string, price float64, history []models.PricePoint) *fakeProvider {
	f.prices[ticker] = decimal.NewFromFloat(price)
	f.histories[ticker] = history
	return f
}

func (f *fakeProvider) LatestPrice(_ context.Context, ticker string) (decimal.Decimal, bool) {
	p, ok := f.prices[ticker]
	return p, ok
}

func (f *fakeProvider) LatestPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range tickers {
		if p, ok := f.LatestPrice(ctx, t); ok {
			out[t] = p
		}
	}
	return out
}

func (f *fakeProvider) PriceHistory(_ context.Context, ticker string, _ models.Window) ([]models.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if err := f.failures[ticker]; err != nil {
		return nil, err
	}
	return f.histories[ticker], nil
}

func (f *fakeProvider) historyCalls(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// closesFrom builds a daily close path starting at base on day0 that realizes returns
func closesFrom(base float64, returns []float64) []models.PricePoint {
	points := make([]models.PricePoint, len(returns)+1)
	price := base
	points[0] = models.PricePoint{Date: day0, Close: price}
	for i, r := range returns {
		price *= 1 + r
		points[i+1] = models.PricePoint{Date: day0.AddDate(0, 0, i+1), Close: price}
	}
	return points
}

// normalReturns draws n daily returns with the given mean and volatility
func normalReturns(seed uint64, n int, mean, vol float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + vol*rng.NormFloat64()
	}
	return out
}

// threeAssetSeries is a year of synthetic returns for AAPL, MSFT and BND
func threeAssetSeries() *ReturnSeries {
	series, err := NewReturnSeries(map[string][]models.PricePoint{
		"AAPL": closesFrom(175, normalReturns(1, 250, 0.0008, 0.015)),
		"MSFT": closesFrom(375, normalReturns(2, 250, 0.0006, 0.020)),
		"BND":  closesFrom(73, normalReturns(3, 250, 0.0002, 0.004)),
	}, []string{"AAPL", "MSFT", "BND"})
	if err != nil {
		panic(err)
	}
	return series
}

// manualSnapshot builds a snapshot directly from horizon moments
func manualSnapshot(tickers []string, mean []float64, cov []float64) *Snapshot {
	return &Snapshot{
		Tickers:      tickers,
		Mean:         mean,
		Cov:          mat.NewSymDense(len(tickers), cov),
		Days:         252,
		RiskFreeRate: 0.04,
	}
}
