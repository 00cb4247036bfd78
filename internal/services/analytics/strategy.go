package analytics

// Strategy is one of the closed set of allocation objectives.
// Implementations live in this package only.
type Strategy interface {
	Name() string
	strategy()
}

// EqualWeight assigns 1/N to every ticker without solving.
type EqualWeight struct{}

// MaxSharpe maximizes (return - riskFree) / volatility.
type MaxSharpe struct{}

// MinVolatility minimizes portfolio standard deviation.
type MinVolatility struct{}

// EqualRisk drives every asset toward the same contribution to portfolio risk.
type EqualRisk struct{}

func (EqualWeight) Name() string   { return "equal_weight" }
func (MaxSharpe) Name() string     { return "max_sharpe" }
func (MinVolatility) Name() string { return "min_volatility" }
func (EqualRisk) Name() string     { return "equal_risk" }

func (EqualWeight) strategy()   {}
func (MaxSharpe) strategy()     {}
func (MinVolatility) strategy() {}
func (EqualRisk) strategy()     {}

// singleTicker labels results that short-circuit to a 100% allocation
const singleTicker = "single_ticker"

// Strategies lists every supported strategy
func Strategies() []Strategy {
	return []Strategy{MaxSharpe{}, MinVolatility{}, EqualWeight{}, EqualRisk{}}
}

// ParseStrategy maps a wire name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, validationErrorf("unknown strategy %q: must be one of max_sharpe, min_volatility, equal_weight, equal_risk", name)
}

// objective returns the function to minimize for a strategy, or nil when the
// strategy is solved in closed form.
func objective(s Strategy, snap *Snapshot) func(w []float64) float64 {
	switch s.(type) {
	case MaxSharpe:
		return func(w []float64) float64 {
			_, _, sharpe := snap.Performance(w)
			return -sharpe
		}
	case MinVolatility:
		return func(w []float64) float64 {
			_, vol, _ := snap.Performance(w)
			return vol
		}
	case EqualRisk:
		return func(w []float64) float64 {
			contrib := snap.RiskContributions(w)
			var mean float64
			for _, c := range contrib {
				mean += c
			}
			mean /= float64(len(contrib))
			var dev float64
			for _, c := range contrib {
				dev += (c - mean) * (c - mean)
			}
			return dev
		}
	default:
		return nil
	}
}
