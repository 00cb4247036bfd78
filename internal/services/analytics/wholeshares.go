package analytics

import (
	"github.com/shopspring/decimal"
)

// ShareAllocation is a weight allocation rounded down to whole shares
type ShareAllocation struct {
	Shares   map[string]int64
	Weights  map[string]float64
	Invested decimal.Decimal
	Cash     decimal.Decimal
}

// AdjustToWholeShares converts target weights into floor(dollars/price) shares
// and recomputes weights from the whole-share values. The uninvested remainder
// is returned as Cash, so Weights may sum to less than 1.
func AdjustToWholeShares(weights map[string]float64, totalValue decimal.Decimal, prices map[string]decimal.Decimal) ShareAllocation {
	alloc := ShareAllocation{
		Shares:   make(map[string]int64, len(weights)),
		Weights:  make(map[string]float64, len(weights)),
		Invested: decimal.Zero,
		Cash:     totalValue,
	}
	if !totalValue.IsPositive() {
		for t := range weights {
			alloc.Shares[t] = 0
			alloc.Weights[t] = 0
		}
		return alloc
	}

	values := make(map[string]decimal.Decimal, len(weights))
	for t, w := range weights {
		price, ok := prices[t]
		if !ok || !price.IsPositive() || w <= 0 {
			alloc.Shares[t] = 0
			values[t] = decimal.Zero
			continue
		}
		dollars := totalValue.Mul(decimal.NewFromFloat(w))
		shares := dollars.Div(price).Floor()
		alloc.Shares[t] = shares.IntPart()
		values[t] = shares.Mul(price)
		alloc.Invested = alloc.Invested.Add(values[t])
	}

	for t, v := range values {
		alloc.Weights[t] = v.Div(totalValue).InexactFloat64()
	}
	alloc.Cash = totalValue.Sub(alloc.Invested)
	return alloc
}
