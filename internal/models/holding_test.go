package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewHolding(t *testing.T) {
	h := NewHolding("  aapl ", decimal.NewFromInt(10), decimal.NewFromInt(150))

	if h.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, got %s", h.Ticker)
	}
	if !h.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity 10, got %s", h.Quantity)
	}
}

func TestHolding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		holding Holding
		wantErr bool
	}{
		{"valid", NewHolding("MSFT", decimal.NewFromInt(25), decimal.NewFromInt(300)), false},
		{"valid without cost", NewHolding("MSFT", decimal.NewFromFloat(0.5), decimal.Zero), false},
		{"empty ticker", NewHolding(" ", decimal.NewFromInt(1), decimal.Zero), true},
		{"zero quantity", NewHolding("VOO", decimal.Zero, decimal.Zero), true},
		{"negative quantity", NewHolding("VOO", decimal.NewFromInt(-3), decimal.Zero), true},
		{"negative cost", NewHolding("VOO", decimal.NewFromInt(3), decimal.NewFromInt(-1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.holding.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGainLossPercent(t *testing.T) {
	h := NewHolding("AAPL", decimal.NewFromInt(100), decimal.NewFromInt(150))

	got := GainLossPercent(h.Quantity.Mul(decimal.NewFromInt(165)), h.CostBasis())
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected gain 10%%, got %s", got)
	}

	noCost := NewHolding("AAPL", decimal.NewFromInt(100), decimal.Zero)
	if !GainLossPercent(decimal.NewFromInt(16500), noCost.CostBasis()).IsZero() {
		t.Error("Expected zero gain when cost basis is unknown")
	}
}
