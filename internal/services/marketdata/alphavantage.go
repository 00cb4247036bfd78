package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/shopspring/decimal"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

var errMissingAPIKey = errors.New("alpha vantage requires an API key")

func (s *Service) alphaVantageQuery(ctx context.Context, params url.Values, out any) error {
	if s.apiKey == "" {
		return errMissingAPIKey
	}
	base := s.baseURL
	if base == "" {
		base = alphaVantageBaseURL
	}
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/query?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", params.Get("function"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *Service) fetchAlphaVantageQuote(ctx context.Context, ticker string) (*Quote, error) {
	var result struct {
		GlobalQuote struct {
			Price         string `json:"05. price"`
			Change        string `json:"09. change"`
			ChangePercent string `json:"10. change percent"`
			Open          string `json:"02. open"`
			High          string `json:"03. high"`
			Low           string `json:"04. low"`
			Volume        string `json:"06. volume"`
		} `json:"Global Quote"`
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", ticker)
	if err := s.alphaVantageQuery(ctx, params, &result); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(result.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, ticker)
	}
	change, _ := decimal.NewFromString(result.GlobalQuote.Change)
	open, _ := decimal.NewFromString(result.GlobalQuote.Open)
	high, _ := decimal.NewFromString(result.GlobalQuote.High)
	low, _ := decimal.NewFromString(result.GlobalQuote.Low)
	volume, _ := strconv.ParseInt(result.GlobalQuote.Volume, 10, 64)
	changePercent, _ := decimal.NewFromString(strings.TrimSuffix(result.GlobalQuote.ChangePercent, "%"))

	return &Quote{
		Ticker:        ticker,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Open:          open,
		High:          high,
		Low:           low,
		Volume:        volume,
		LastUpdated:   s.now(),
		IsMarketOpen:  s.IsMarketOpen(),
	}, nil
}

func (s *Service) fetchAlphaVantageHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	var result struct {
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Series       map[string]struct {
			Close string `json:"4. close"`
		} `json:"Time Series (Daily)"`
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("outputsize", "full")
	if err := s.alphaVantageQuery(ctx, params, &result); err != nil {
		return nil, err
	}
	if result.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, result.ErrorMessage)
	}
	if result.Note != "" {
		return nil, fmt.Errorf("alpha vantage throttled: %s", result.Note)
	}

	from := start.Format(time.DateOnly)
	to := end.Format(time.DateOnly)
	points := make([]models.PricePoint, 0, len(result.Series))
	for day, bar := range result.Series {
		if day < from || day > to {
			continue
		}
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil || closePrice <= 0 {
			continue
		}
		points = append(points, models.PricePoint{Date: date, Close: closePrice})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
