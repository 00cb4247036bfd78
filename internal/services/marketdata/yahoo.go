package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/shopspring/decimal"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
				PreviousClose      decimal.Decimal `json:"previousClose"`
				ChartPreviousClose decimal.Decimal `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *Service) yahooChart(ctx context.Context, ticker string, params url.Values) (*yahooChart, error) {
	base := s.baseURL
	if base == "" {
		base = yahooBaseURL
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", base, url.PathEscape(ticker))
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart returned status %d", resp.StatusCode)
	}

	var result yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, ticker)
	}
	return &result, nil
}

func (s *Service) fetchYahooQuote(ctx context.Context, ticker string) (*Quote, error) {
	chart, err := s.yahooChart(ctx, ticker, nil)
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev.IsZero() {
		prev = meta.ChartPreviousClose
	}
	change := meta.RegularMarketPrice.Sub(prev)
	changePercent := decimal.Zero
	if !prev.IsZero() {
		changePercent = change.Div(prev).Mul(decimal.NewFromInt(100))
	}

	return &Quote{
		Ticker:        ticker,
		Price:         meta.RegularMarketPrice,
		Change:        change.Round(2),
		ChangePercent: changePercent.Round(2),
		LastUpdated:   s.now(),
		IsMarketOpen:  s.IsMarketOpen(),
	}, nil
}

// fetchYahooHistory reads daily closes, preferring adjusted closes. Days with
// a null close are skipped.
func (s *Service) fetchYahooHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")

	chart, err := s.yahooChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	res := chart.Chart.Result[0]
	var closes []*float64
	if len(res.Indicators.AdjClose) > 0 && len(res.Indicators.AdjClose[0].AdjClose) == len(res.Timestamp) {
		closes = res.Indicators.AdjClose[0].AdjClose
	} else if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}

	points := make([]models.PricePoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		points = append(points, models.PricePoint{
			Date:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}
	return points, nil
}
