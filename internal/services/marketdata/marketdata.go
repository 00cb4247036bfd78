package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/findosh/quantcore/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Provider represents a market data provider
type Provider string

const (
	ProviderMock  Provider = "mock"
	ProviderYahoo Provider = "yahoo"
	ProviderAlpha Provider = "alphavantage"
)

// ParseProvider maps a config value to a Provider, defaulting to mock
func ParseProvider(s string) Provider {
	switch Provider(s) {
	case ProviderYahoo, ProviderAlpha:
		return Provider(s)
	default:
		return ProviderMock
	}
}

// ErrUnavailable is returned when a provider has no data for a ticker
var ErrUnavailable = errors.New("market data unavailable")

// Quote represents a stock/ETF quote
type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        int64           `json:"volume"`
	LastUpdated   time.Time       `json:"last_updated"`
	IsMarketOpen  bool            `json:"is_market_open"`
}

// Service provides market data functionality
type Service struct {
	provider   Provider
	apiKey     string
	baseURL    string
	cacheTTL   time.Duration
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	group      singleflight.Group
	log        zerolog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	quotes  map[string]*Quote
	history map[string]historyEntry
}

// Config holds service configuration
type Config struct {
	Provider Provider
	APIKey   string
	// BaseURL overrides the provider endpoint, mainly for tests
	BaseURL           string
	CacheTTL          time.Duration
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            zerolog.Logger
}

// NewService creates a new market data service
func NewService(cfg Config) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Service{
		provider: cfg.Provider,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "marketdata-" + string(cfg.Provider),
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
		log:     cfg.Logger.With().Str("component", "marketdata").Str("provider", string(cfg.Provider)).Logger(),
		now:     time.Now,
		quotes:  make(map[string]*Quote),
		history: make(map[string]historyEntry),
	}
}

// GetQuote fetches a quote for a single ticker
func (s *Service) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	// Check cache first
	s.mu.RLock()
	if cached, ok := s.quotes[ticker]; ok {
		if s.now().Sub(cached.LastUpdated) < s.cacheTTL {
			s.mu.RUnlock()
			metrics.MarketDataCacheHits.WithLabelValues("quote").Inc()
			return cached, nil
		}
	}
	s.mu.RUnlock()

	v, err := s.shared(ctx, "quote:"+ticker, func(ctx context.Context) (interface{}, error) {
		return s.fetchQuote(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	quote := v.(*Quote)

	// Update cache
	s.mu.Lock()
	s.quotes[ticker] = quote
	s.mu.Unlock()

	return quote, nil
}

// shared collapses concurrent fetches for the same key. The fetch runs on a
// context detached from the first caller and bounded by the service timeout,
// so one caller going away does not fail the others waiting on it.
func (s *Service) shared(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return fetch(fetchCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) fetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	switch s.provider {
	case ProviderYahoo:
		v, err := s.remote(ctx, "quote", func() (interface{}, error) {
			return s.fetchYahooQuote(ctx, ticker)
		})
		if err != nil {
			return nil, err
		}
		return v.(*Quote), nil
	case ProviderAlpha:
		v, err := s.remote(ctx, "quote", func() (interface{}, error) {
			return s.fetchAlphaVantageQuote(ctx, ticker)
		})
		if err != nil {
			return nil, err
		}
		return v.(*Quote), nil
	default:
		return s.getMockQuote(ticker)
	}
}

// GetQuotes fetches quotes for multiple tickers. Tickers that fail are left
// out of the map; an error is returned only when every ticker fails.
func (s *Service) GetQuotes(ctx context.Context, tickers []string) (map[string]*Quote, error) {
	quotes := make(map[string]*Quote, len(tickers))
	var mu sync.Mutex
	var errs []error

	var g errgroup.Group
	g.SetLimit(8)
	for _, ticker := range tickers {
		g.Go(func() error {
			quote, err := s.GetQuote(ctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
				return nil
			}
			quotes[ticker] = quote
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 && len(quotes) == 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		s.log.Warn().Err(err).Msg("quote unavailable")
	}
	return quotes, nil
}

// LatestPrice returns the latest price for ticker, or false if unavailable
func (s *Service) LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	quote, err := s.GetQuote(ctx, ticker)
	if err != nil || !quote.Price.IsPositive() {
		return decimal.Zero, false
	}
	return quote.Price, true
}

// LatestPrices returns the latest price of every available ticker
func (s *Service) LatestPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(tickers))
	quotes, err := s.GetQuotes(ctx, tickers)
	if err != nil {
		s.log.Warn().Err(err).Msg("no latest prices available")
		return prices
	}
	for t, q := range quotes {
		if q.Price.IsPositive() {
			prices[t] = q.Price
		}
	}
	return prices
}

// remote runs a provider call behind the rate limiter and circuit breaker
func (s *Service) remote(ctx context.Context, operation string, call func() (interface{}, error)) (interface{}, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	v, err := s.breaker.Execute(call)
	metrics.MarketDataLatency.WithLabelValues(string(s.provider), operation).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
		}
	}
	metrics.MarketDataRequests.WithLabelValues(string(s.provider), operation, outcome).Inc()
	return v, err
}

// newYork is the exchange's local zone, daylight saving included
var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}()

// IsMarketOpen checks if the US stock market is currently open
func (s *Service) IsMarketOpen() bool {
	now := s.now().In(newYork)

	// Check if weekday
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return false
	}

	// Market hours: 9:30 AM - 4:00 PM Eastern
	hour := now.Hour()
	minute := now.Minute()

	if hour < 9 || (hour == 9 && minute < 30) {
		return false
	}
	if hour >= 16 {
		return false
	}

	return true
}

// MarketStatus represents overall market status
type MarketStatus struct {
	IsOpen      bool      `json:"is_open"`
	NextOpen    time.Time `json:"next_open,omitempty"`
	NextClose   time.Time `json:"next_close,omitempty"`
	Message     string    `json:"message"`
	LastUpdated time.Time `json:"last_updated"`
}

// GetMarketStatus returns current market status
func (s *Service) GetMarketStatus() *MarketStatus {
	now := s.now().In(newYork)
	isOpen := s.IsMarketOpen()

	status := &MarketStatus{
		IsOpen:      isOpen,
		LastUpdated: now,
	}

	if isOpen {
		status.NextClose = time.Date(now.Year(), now.Month(), now.Day(), 16, 0, 0, 0, now.Location())
		status.Message = "Market is open"
		return status
	}

	nextOpen := now
	if now.Hour() >= 16 {
		nextOpen = nextOpen.AddDate(0, 0, 1)
	}
	// Skip to next weekday
	for nextOpen.Weekday() == time.Saturday || nextOpen.Weekday() == time.Sunday {
		nextOpen = nextOpen.AddDate(0, 0, 1)
	}

	status.NextOpen = time.Date(nextOpen.Year(), nextOpen.Month(), nextOpen.Day(), 9, 30, 0, 0, now.Location())
	status.Message = "Market is closed"
	return status
}
