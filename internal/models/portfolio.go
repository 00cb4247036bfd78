package models

import (
	"github.com/shopspring/decimal"
)

// AccountType describes the tax treatment of the account holding a portfolio
type AccountType string

const (
	AccountTaxable        AccountType = "taxable"
	AccountTraditionalIRA AccountType = "traditional_ira"
	AccountRothIRA        AccountType = "roth_ira"
	Account401k           AccountType = "401k"
)

// ParseAccountType maps a wire value to an AccountType. An empty value is
// taxable; anything unrecognized is rejected.
func ParseAccountType(s string) (AccountType, bool) {
	switch a := AccountType(s); a {
	case "":
		return AccountTaxable, true
	case AccountTaxable, AccountTraditionalIRA, AccountRothIRA, Account401k:
		return a, true
	default:
		return "", false
	}
}

// RequiresWholeShares reports whether the account disallows fractional shares
func (a AccountType) RequiresWholeShares() bool {
	switch a {
	case AccountTraditionalIRA, AccountRothIRA, Account401k:
		return true
	default:
		return false
	}
}

// DistinctTickers returns the distinct normalized tickers of holdings, first occurrence wins
func DistinctTickers(holdings []Holding) []string {
	seen := make(map[string]bool, len(holdings))
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		t := NormalizeTicker(h.Ticker)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	return tickers
}

// QuantityByTicker sums quantities of holdings sharing a ticker
func QuantityByTicker(holdings []Holding) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(holdings))
	for _, h := range holdings {
		t := NormalizeTicker(h.Ticker)
		if t == "" {
			continue
		}
		totals[t] = totals[t].Add(h.Quantity)
	}
	return totals
}
