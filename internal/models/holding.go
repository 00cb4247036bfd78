package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Holding represents a single position in a portfolio
type Holding struct {
	Ticker      string          `json:"ticker"`   // e.g., "AAPL"
	Quantity    decimal.Decimal `json:"quantity"` // shares, may be fractional
	AverageCost decimal.Decimal `json:"average_cost,omitempty"`
}

// NewHolding creates a holding with a normalized ticker
func NewHolding(ticker string, quantity, averageCost decimal.Decimal) Holding {
	return Holding{
		Ticker:      NormalizeTicker(ticker),
		Quantity:    quantity,
		AverageCost: averageCost,
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Validate checks that the holding can be priced
func (h Holding) Validate() error {
	if NormalizeTicker(h.Ticker) == "" {
		return errors.New("holding ticker is required")
	}
	if !h.Quantity.IsPositive() {
		return errors.New("holding quantity must be positive")
	}
	if h.AverageCost.IsNegative() {
		return errors.New("holding average cost cannot be negative")
	}
	return nil
}

// CostBasis returns the total amount paid for the position
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// GainLossPercent returns the unrealized gain/loss of a position worth value
// against its cost basis, as a percentage. It is zero when the basis is unknown.
func GainLossPercent(value, basis decimal.Decimal) decimal.Decimal {
	if !basis.IsPositive() {
		return decimal.Zero
	}
	return value.Sub(basis).Div(basis).Mul(decimal.NewFromInt(100)).Round(2)
}
