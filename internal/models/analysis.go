package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingValue is the current value breakdown of one ticker
type HoldingValue struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Value        decimal.Decimal `json:"value"`
	Weight       float64         `json:"weight"`
	GainLossPct  decimal.Decimal `json:"gain_loss_pct"`
}

// AnalysisResult holds realized risk/performance metrics for a portfolio.
// Return, volatility and Sharpe are annualized at the 252-day convention;
// VaR95 is a daily figure.
type AnalysisResult struct {
	TotalValue        decimal.Decimal               `json:"total_value"`
	AnnualReturn      float64                       `json:"annual_return"`
	Volatility        float64                       `json:"volatility"`
	SharpeRatio       float64                       `json:"sharpe_ratio"`
	MaxDrawdown       float64                       `json:"max_drawdown"`
	VaR95             float64                       `json:"var_95"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlation_matrix"`
	Holdings          []HoldingValue                `json:"holdings"`
	Excluded          []string                      `json:"excluded_tickers,omitempty"`
	Observations      int                           `json:"observations"`
	Period            string                        `json:"period"`
	CalculatedAt      time.Time                     `json:"calculated_at"`
}
