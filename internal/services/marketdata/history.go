package marketdata

import (
	"context"
	"time"

	"github.com/findosh/quantcore/internal/metrics"
	"github.com/findosh/quantcore/internal/models"
)

type historyEntry struct {
	points    []models.PricePoint
	fetchedAt time.Time
}

// PriceHistory returns daily closes for ticker over window, oldest first.
// Results are cached per (ticker, start, end) for the cache TTL and concurrent
// requests for the same key share one provider call.
func (s *Service) PriceHistory(ctx context.Context, ticker string, window models.Window) ([]models.PricePoint, error) {
	start, end := window.Bounds(s.now().UTC())
	key := ticker + "|" + start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)

	s.mu.RLock()
	if cached, ok := s.history[key]; ok && s.now().Sub(cached.fetchedAt) < s.cacheTTL {
		s.mu.RUnlock()
		metrics.MarketDataCacheHits.WithLabelValues("history").Inc()
		return cached.points, nil
	}
	s.mu.RUnlock()

	v, err := s.shared(ctx, "history:"+key, func(ctx context.Context) (interface{}, error) {
		return s.fetchHistory(ctx, ticker, start, end)
	})
	if err != nil {
		return nil, err
	}
	points := v.([]models.PricePoint)

	s.mu.Lock()
	s.history[key] = historyEntry{points: points, fetchedAt: s.now()}
	s.mu.Unlock()

	return points, nil
}

func (s *Service) fetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	switch s.provider {
	case ProviderYahoo:
		v, err := s.remote(ctx, "history", func() (interface{}, error) {
			return s.fetchYahooHistory(ctx, ticker, start, end)
		})
		if err != nil {
			return nil, err
		}
		return v.([]models.PricePoint), nil
	case ProviderAlpha:
		v, err := s.remote(ctx, "history", func() (interface{}, error) {
			return s.fetchAlphaVantageHistory(ctx, ticker, start, end)
		})
		if err != nil {
			return nil, err
		}
		return v.([]models.PricePoint), nil
	default:
		return s.mockHistory(ticker, start, end)
	}
}
