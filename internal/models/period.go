package models

import (
	"time"
)

// Period is a named historical window relative to today
type Period string

// Historical period constants
const (
	Period1Month  Period = "1mo"
	Period3Month  Period = "3mo"
	Period6Month  Period = "6mo"
	Period1Year   Period = "1y"
	Period2Year   Period = "2y"
	Period3Year   Period = "3y"
	Period4Year   Period = "4y"
	Period5Year   Period = "5y"
	Period10Year  Period = "10y"
	PeriodYTD     Period = "ytd"
	PeriodMax     Period = "max"
	DefaultPeriod = Period1Year
)

// maxLookbackYears bounds the "max" period so providers get a finite window
const maxLookbackYears = 30

// ParsePeriod validates a period label. "6m" is accepted as an alias of "6mo".
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(s); p {
	case Period1Month, Period3Month, Period6Month, Period1Year, Period2Year, Period3Year,
		Period4Year, Period5Year, Period10Year, PeriodYTD, PeriodMax:
		return p, true
	case "6m":
		return Period6Month, true
	default:
		return "", false
	}
}

// StartDate calculates the start of the period counting back from now
func (p Period) StartDate(now time.Time) time.Time {
	switch p {
	case Period1Month:
		return now.AddDate(0, -1, 0)
	case Period3Month:
		return now.AddDate(0, -3, 0)
	case Period6Month, "6m":
		return now.AddDate(0, -6, 0)
	case Period1Year:
		return now.AddDate(-1, 0, 0)
	case Period2Year:
		return now.AddDate(-2, 0, 0)
	case Period3Year:
		return now.AddDate(-3, 0, 0)
	case Period4Year:
		return now.AddDate(-4, 0, 0)
	case Period5Year:
		return now.AddDate(-5, 0, 0)
	case Period10Year:
		return now.AddDate(-10, 0, 0)
	case PeriodYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	case PeriodMax:
		return now.AddDate(-maxLookbackYears, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// Window is a historical window: either a named Period or an explicit date range.
// A non-zero Start takes precedence over Period.
type Window struct {
	Period Period    `json:"period,omitempty"`
	Start  time.Time `json:"start,omitempty"`
	End    time.Time `json:"end,omitempty"`
}

// PeriodWindow returns a window for a named period
func PeriodWindow(p Period) Window {
	return Window{Period: p}
}

// RangeWindow returns a window for an explicit date range
func RangeWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Bounds resolves the window into concrete dates
func (w Window) Bounds(now time.Time) (time.Time, time.Time) {
	end := w.End
	if end.IsZero() {
		end = now
	}
	if !w.Start.IsZero() {
		return w.Start, end
	}
	p := w.Period
	if p == "" {
		p = DefaultPeriod
	}
	return p.StartDate(end), end
}

// Label describes the window for result payloads
func (w Window) Label() string {
	if !w.Start.IsZero() {
		end := "today"
		if !w.End.IsZero() {
			end = w.End.Format(time.DateOnly)
		}
		return w.Start.Format(time.DateOnly) + ".." + end
	}
	if w.Period == "" {
		return string(DefaultPeriod)
	}
	return string(w.Period)
}

// Horizon is a forecast horizon label for optimizer results
type Horizon string

const (
	Horizon6Month  Horizon = "6m"
	Horizon1Year   Horizon = "1y"
	Horizon2Year   Horizon = "2y"
	Horizon3Year   Horizon = "3y"
	Horizon4Year   Horizon = "4y"
	Horizon5Year   Horizon = "5y"
	Horizon10Year  Horizon = "10y"
	DefaultHorizon = Horizon1Year
)

var horizonTradingDays = map[Horizon]int{
	Horizon6Month: 126,
	"6mo":         126,
	Horizon1Year:  252,
	Horizon2Year:  504,
	Horizon3Year:  756,
	Horizon4Year:  1008,
	Horizon5Year:  1260,
	Horizon10Year: 2520,
}

// TradingDays returns the number of trading days in the horizon.
// Unknown horizons fall back to one year.
func (h Horizon) TradingDays() int {
	if days, ok := horizonTradingDays[h]; ok {
		return days
	}
	return horizonTradingDays[DefaultHorizon]
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
