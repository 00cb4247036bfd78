package marketdata

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// Known approximate prices (for realistic mock data)
var mockPrices = map[string]float64{
	"AAPL":  175.00,
	"MSFT":  375.00,
	"GOOGL": 140.00,
	"AMZN":  180.00,
	"NVDA":  475.00,
	"META":  500.00,
	"TSLA":  250.00,
	"JPM":   195.00,
	"V":     280.00,
	"JNJ":   160.00,
	"VOO":   430.00,
	"VTI":   235.00,
	"SPY":   470.00,
	"QQQ":   400.00,
	"BND":   73.00,
	"AGG":   98.00,
	"VNQ":   85.00,
	"GLD":   185.00,
}

// Mock data for development/testing
func (s *Service) getMockQuote(ticker string) (*Quote, error) {
	if !symbolPattern.MatchString(ticker) {
		return nil, fmt.Errorf("%w: %q is not a listed symbol", ErrUnavailable, ticker)
	}

	// Generate deterministic mock data based on ticker
	basePrice := mockBasePrice(ticker)
	changePercent := s.mockChange(ticker)
	change := basePrice.Mul(changePercent).Div(decimal.NewFromInt(100))

	return &Quote{
		Ticker:        ticker,
		Price:         basePrice,
		Change:        change.Round(2),
		ChangePercent: changePercent.Round(2),
		Open:          basePrice.Sub(change.Div(decimal.NewFromInt(2))).Round(2),
		High:          basePrice.Add(basePrice.Mul(decimal.NewFromFloat(0.01))).Round(2),
		Low:           basePrice.Sub(basePrice.Mul(decimal.NewFromFloat(0.01))).Round(2),
		Volume:        1000000 + int64(len(ticker)*100000),
		LastUpdated:   s.now(),
		IsMarketOpen:  s.IsMarketOpen(),
	}, nil
}

func mockBasePrice(ticker string) decimal.Decimal {
	if price, ok := mockPrices[ticker]; ok {
		return decimal.NewFromFloat(price)
	}

	// Generate from ticker hash
	return decimal.NewFromFloat(50.0 + float64(tickerHash(ticker)%200))
}

func (s *Service) mockChange(ticker string) decimal.Decimal {
	// Small change based on ticker and day, -1.5% to +1.5%
	hash := tickerHash(ticker) + uint64(s.now().Day())
	change := float64(int(hash%300)-150) / 100.0
	return decimal.NewFromFloat(change)
}

// mockHistory walks backward from the mock price over business days in
// [start, end]. Each day's return is seeded by (ticker, date) so a given day
// always has the same close regardless of the requested window.
func (s *Service) mockHistory(ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if !symbolPattern.MatchString(ticker) {
		return nil, fmt.Errorf("%w: %q is not a listed symbol", ErrUnavailable, ticker)
	}

	days := businessDays(start, end)
	if len(days) == 0 {
		return nil, nil
	}

	h := tickerHash(ticker)
	dailyVol := 0.008 + float64(h%15)/1000
	drift := 0.0002 + float64(h%7)/20000

	price := mockBasePrice(ticker).InexactFloat64()
	points := make([]models.PricePoint, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		points[i] = models.PricePoint{Date: days[i], Close: math.Round(price*100) / 100}

		rng := rand.New(rand.NewPCG(h, uint64(days[i].Unix())))
		r := math.Max(drift+dailyVol*rng.NormFloat64(), -0.5)
		price /= 1 + r
	}
	return points, nil
}

// businessDays lists weekdays from start to end inclusive at UTC midnight
func businessDays(start, end time.Time) []time.Time {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func tickerHash(ticker string) uint64 {
	f := fnv.New64a()
	_, _ = f.Write([]byte(ticker))
	return f.Sum64()
}
