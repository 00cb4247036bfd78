package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// PriceProvider is the narrow contract the core needs from a market data source.
// A missing key or false ok means the ticker is unavailable.
type PriceProvider interface {
	LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, bool)
	LatestPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal
	PriceHistory(ctx context.Context, ticker string, window models.Window) ([]models.PricePoint, error)
}

// maxConcurrentFetches bounds history requests in flight per call
const maxConcurrentFetches = 8

// ReturnSeries holds daily simple returns for a set of tickers, aligned on the
// calendar dates where every ticker has a return.
type ReturnSeries struct {
	Tickers  []string
	Dates    []time.Time
	Excluded []string

	columns [][]float64 // columns[i] belongs to Tickers[i]
}

// Len returns the number of aligned observations
func (s *ReturnSeries) Len() int {
	return len(s.Dates)
}

// Column returns the returns of one ticker, or nil if it is not in the series
func (s *ReturnSeries) Column(ticker string) []float64 {
	for i, t := range s.Tickers {
		if t == ticker {
			return s.columns[i]
		}
	}
	return nil
}

// Matrix returns the returns as a dates × tickers matrix
func (s *ReturnSeries) Matrix() *mat.Dense {
	rows, cols := s.Len(), len(s.Tickers)
	data := make([]float64, rows*cols)
	for j, col := range s.columns {
		for i, r := range col {
			data[i*cols+j] = r
		}
	}
	return mat.NewDense(rows, cols, data)
}

// Weighted returns Σ w_i·r_i(t) per date. Tickers in weights that are not
// part of the series contribute zero.
func (s *ReturnSeries) Weighted(weights map[string]float64) []float64 {
	out := make([]float64, s.Len())
	for j, t := range s.Tickers {
		w, ok := weights[t]
		if !ok || w == 0 {
			continue
		}
		for i, r := range s.columns[j] {
			out[i] += w * r
		}
	}
	return out
}

// NewReturnSeries converts close histories into aligned daily returns.
// order fixes the ticker order; tickers with fewer than two closes are excluded.
func NewReturnSeries(histories map[string][]models.PricePoint, order []string) (*ReturnSeries, error) {
	series := &ReturnSeries{}
	perTicker := make([]map[int]float64, 0, len(order))

	for _, ticker := range order {
		returns := dailyReturns(histories[ticker])
		if len(returns) == 0 {
			series.Excluded = append(series.Excluded, ticker)
			continue
		}
		series.Tickers = append(series.Tickers, ticker)
		perTicker = append(perTicker, returns)
	}

	if len(series.Tickers) == 0 {
		if len(order) == 1 {
			return nil, &MissingDataError{Tickers: order, Reason: "no historical data"}
		}
		return nil, &MissingDataError{Tickers: order, Reason: "unable to fetch historical data for any tickers"}
	}

	// Intersect on exact date
	var common []int
	for day := range perTicker[0] {
		inAll := true
		for _, returns := range perTicker[1:] {
			if _, ok := returns[day]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, day)
		}
	}
	if len(common) == 0 {
		return nil, &MissingDataError{Tickers: series.Tickers, Reason: "no overlapping trading dates"}
	}
	sort.Ints(common)

	series.Dates = make([]time.Time, len(common))
	for i, day := range common {
		series.Dates[i] = dayToTime(day)
	}
	series.columns = make([][]float64, len(series.Tickers))
	for j, returns := range perTicker {
		col := make([]float64, len(common))
		for i, day := range common {
			col[i] = returns[day]
		}
		series.columns[j] = col
	}

	return series, nil
}

// dailyReturns computes close-to-close percentage changes keyed by calendar day.
// The first date has no prior close and is dropped.
func dailyReturns(points []models.PricePoint) map[int]float64 {
	if len(points) < 2 {
		return nil
	}
	sorted := make([]models.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	returns := make(map[int]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Close, sorted[i].Close
		if prev == 0 {
			continue
		}
		r := (cur - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		returns[dayKey(sorted[i].Date)] = r
	}
	return returns
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func dayToTime(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}

// BuildReturnSeries fetches history for every ticker concurrently and builds the
// aligned return series. A fetch that fails or exceeds timeout excludes the ticker.
func BuildReturnSeries(ctx context.Context, provider PriceProvider, tickers []string, window models.Window, timeout time.Duration, log zerolog.Logger) (*ReturnSeries, error) {
	histories := make([][]models.PricePoint, len(tickers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, ticker := range tickers {
		g.Go(func() error {
			fetchCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			points, err := provider.PriceHistory(fetchCtx, ticker, window)
			if err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Msg("price history unavailable, excluding ticker")
				return nil
			}
			histories[i] = points
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching price history: %w", err)
	}

	byTicker := make(map[string][]models.PricePoint, len(tickers))
	for i, ticker := range tickers {
		byTicker[ticker] = histories[i]
	}

	series, err := NewReturnSeries(byTicker, tickers)
	if err != nil {
		return nil, err
	}
	if len(series.Excluded) > 0 {
		log.Warn().Strs("tickers", series.Excluded).Msg("tickers excluded from statistics")
	}
	return series, nil
}
