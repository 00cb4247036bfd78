package analytics

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/findosh/quantcore/internal/metrics"
	"github.com/findosh/quantcore/internal/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SimulationLimits bounds the number of Monte Carlo draws per request
type SimulationLimits struct {
	Default int
	Min     int
	Max     int
}

// DefaultSimulationLimits returns 10,000 draws by default, clamped to [100, 50,000]
func DefaultSimulationLimits() SimulationLimits {
	return SimulationLimits{Default: 10000, Min: 100, Max: 50000}
}

// Clamp resolves a requested simulation count; n <= 0 selects the default
func (l SimulationLimits) Clamp(n int) int {
	if n <= 0 {
		n = l.Default
	}
	if n < l.Min {
		n = l.Min
	}
	if l.Max > 0 && n > l.Max {
		n = l.Max
	}
	return n
}

// ValidateConfidenceLevel accepts 80, 90 or 95
func ValidateConfidenceLevel(level int) error {
	switch level {
	case 80, 90, 95:
		return nil
	default:
		return validationErrorf("confidence level must be one of 80, 90, 95, got %d", level)
	}
}

// Simulate projects portfolio returns at the optimizer horizon. Draws are
// correlated through the Cholesky factor of the snapshot covariance; when the
// covariance is not positive definite, the portfolio return is drawn from a
// univariate normal and the result is labelled "simple".
func (o *Optimizer) Simulate(weights map[string]float64, simulations, confidenceLevel int) (*models.MonteCarloResult, error) {
	if err := ValidateConfidenceLevel(confidenceLevel); err != nil {
		return nil, err
	}
	n := o.cfg.Simulations.Clamp(simulations)
	w := o.snap.WeightVector(weights)

	seed := o.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var (
		draws  []float64
		method models.SimulationMethod
	)
	var chol mat.Cholesky
	if chol.Factorize(o.snap.Cov) {
		method = models.SimulationCholesky
		draws = o.correlatedDraws(&chol, w, n, rng)
	} else {
		method = models.SimulationSimple
		o.log.Warn().Msg("covariance matrix not positive definite, using simple simulation")
		draws = o.simpleDraws(w, n, rng)
	}
	metrics.SimulationRuns.WithLabelValues(string(method)).Inc()

	return summarizeDraws(draws, method, confidenceLevel, o.cfg.Horizon), nil
}

// correlatedDraws draws mean + L·z per run and returns w·draw
func (o *Optimizer) correlatedDraws(chol *mat.Cholesky, w []float64, n int, rng *rand.Rand) []float64 {
	assets := len(w)
	var lower mat.TriDense
	chol.LTo(&lower)

	mean := mat.NewVecDense(assets, o.snap.Mean)
	weights := mat.NewVecDense(assets, w)
	z := mat.NewVecDense(assets, nil)
	draw := mat.NewVecDense(assets, nil)

	out := make([]float64, n)
	for k := range out {
		for i := 0; i < assets; i++ {
			z.SetVec(i, rng.NormFloat64())
		}
		draw.MulVec(&lower, z)
		draw.AddVec(draw, mean)
		out[k] = mat.Dot(weights, draw)
	}
	return out
}

func (o *Optimizer) simpleDraws(w []float64, n int, rng *rand.Rand) []float64 {
	ret, vol, _ := o.snap.Performance(w)
	out := make([]float64, n)
	for k := range out {
		out[k] = ret + vol*rng.NormFloat64()
	}
	return out
}

func summarizeDraws(draws []float64, method models.SimulationMethod, confidenceLevel int, horizon models.Horizon) *models.MonteCarloResult {
	sorted := make([]float64, len(draws))
	copy(sorted, draws)
	sort.Float64s(sorted)

	tail := float64(100-confidenceLevel) / 2
	mean, std := stat.PopMeanStdDev(draws, nil)

	var losses int
	var m3, m4 float64
	for _, x := range draws {
		if x < 0 {
			losses++
		}
		if std > 0 {
			z := (x - mean) / std
			m3 += z * z * z
			m4 += z * z * z * z
		}
	}
	count := float64(len(draws))

	return &models.MonteCarloResult{
		Method:          method,
		Simulations:     len(draws),
		ConfidenceLevel: confidenceLevel,
		ExpectedReturn:  mean,
		MedianReturn:    percentileSorted(sorted, 50),
		StdDeviation:    std,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: percentileSorted(sorted, tail),
			Upper: percentileSorted(sorted, 100-tail),
		},
		ProbabilityOfLoss: float64(losses) / count,
		Skewness:          m3 / count,
		Kurtosis:          m4 / count,
		Horizon:           horizon,
	}
}
