package models

import (
	"testing"
	"time"
)

func TestHorizon_TradingDays(t *testing.T) {
	tests := []struct {
		horizon Horizon
		want    int
	}{
		{Horizon6Month, 126},
		{"6mo", 126},
		{Horizon1Year, 252},
		{Horizon2Year, 504},
		{Horizon3Year, 756},
		{Horizon4Year, 1008},
		{Horizon5Year, 1260},
		{Horizon10Year, 2520},
		{"7y", 252}, // Unknown falls back to 1 year
		{"", 252},
	}

	for _, tt := range tests {
		t.Run(string(tt.horizon), func(t *testing.T) {
			if got := tt.horizon.TradingDays(); got != tt.want {
				t.Errorf("TradingDays(%s) = %d, want %d", tt.horizon, got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	valid := []string{"1mo", "3mo", "6mo", "1y", "2y", "3y", "4y", "5y", "10y", "ytd", "max"}
	for _, s := range valid {
		if p, ok := ParsePeriod(s); !ok || string(p) != s {
			t.Errorf("ParsePeriod(%q) = %q, %v", s, p, ok)
		}
	}

	if p, ok := ParsePeriod("6m"); !ok || p != Period6Month {
		t.Errorf("ParsePeriod(6m) = %q, %v; want 6mo alias", p, ok)
	}
	if _, ok := ParsePeriod("1d"); ok {
		t.Error("ParsePeriod(1d) should be rejected")
	}
}

func TestPeriod_StartDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   time.Time
	}{
		{Period1Month, time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)},
		{Period6Month, time.Date(2023, 12, 15, 12, 0, 0, 0, time.UTC)},
		{Period1Year, time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period4Year, time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period10Year, time.Date(2014, 6, 15, 12, 0, 0, 0, time.UTC)},
		{PeriodYTD, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"unknown", time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := tt.period.StartDate(now); !got.Equal(tt.want) {
				t.Errorf("StartDate(%s) = %v, want %v", tt.period, got, tt.want)
			}
		})
	}
}

func TestWindow_Bounds(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	start, end := PeriodWindow(Period2Year).Bounds(now)
	if !start.Equal(time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)) || !end.Equal(now) {
		t.Errorf("2y bounds = %v..%v", start, end)
	}

	from := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC)
	w := RangeWindow(from, to)
	start, end = w.Bounds(now)
	if !start.Equal(from) || !end.Equal(to) {
		t.Errorf("range bounds = %v..%v, want %v..%v", start, end, from, to)
	}
	if w.Label() != "2023-01-03..2023-12-29" {
		t.Errorf("Label() = %s", w.Label())
	}

	if (Window{}).Label() != "1y" {
		t.Errorf("empty window label = %s, want 1y", (Window{}).Label())
	}
}

func TestWeightBound_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   WeightBound
		want WeightBound
	}{
		{"valid", WeightBound{0.2, 0.4}, WeightBound{0.2, 0.4}},
		{"negative min", WeightBound{-0.5, 0.4}, WeightBound{0, 0.4}},
		{"max above one", WeightBound{0.1, 1.7}, WeightBound{0.1, 1}},
		{"max below min", WeightBound{0.6, 0.3}, WeightBound{0.6, 0.6}},
		{"min above one", WeightBound{1.5, 2}, WeightBound{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
