package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// AnnualizedReturn scales the mean daily return by tradingDays
func AnnualizedReturn(daily []float64, tradingDays int) float64 {
	if len(daily) == 0 {
		return 0
	}
	return stat.Mean(daily, nil) * float64(tradingDays)
}

// AnnualizedVolatility scales the sample standard deviation by √tradingDays
func AnnualizedVolatility(daily []float64, tradingDays int) float64 {
	if len(daily) < 2 {
		return 0
	}
	return stat.StdDev(daily, nil) * math.Sqrt(float64(tradingDays))
}

// SharpeRatio is (ret - riskFree) / vol, or 0 when vol is not positive
func SharpeRatio(ret, vol, riskFree float64) float64 {
	if vol <= 0 || math.IsNaN(vol) {
		return 0
	}
	return (ret - riskFree) / vol
}

// MaxDrawdown returns the most negative (cum - peak) / peak over the
// cumulative growth path of daily returns. The result is never positive.
func MaxDrawdown(daily []float64) float64 {
	cum := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range daily {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if peak <= 0 {
			continue
		}
		if dd := (cum - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks, h = (n-1)·p/100.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(100, p))
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// CorrelationMatrix returns Pearson correlations between the columns of a
// return series. Undefined entries (constant columns) are reported as 0.
func CorrelationMatrix(series *ReturnSeries) map[string]map[string]float64 {
	n := len(series.Tickers)
	out := make(map[string]map[string]float64, n)
	if series.Len() < 2 {
		for _, t := range series.Tickers {
			out[t] = map[string]float64{t: 1}
		}
		return out
	}

	corr := mat.NewSymDense(n, nil)
	stat.CorrelationMatrix(corr, series.Matrix(), nil)

	for i, ti := range series.Tickers {
		row := make(map[string]float64, n)
		for j, tj := range series.Tickers {
			v := corr.At(i, j)
			switch {
			case i == j:
				v = 1
			case math.IsNaN(v) || math.IsInf(v, 0):
				v = 0
			}
			row[tj] = v
		}
		out[ti] = row
	}
	return out
}
