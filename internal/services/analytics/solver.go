package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/findosh/quantcore/internal/models"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

const (
	// weight for ‖x - P(x)‖², keeps the unconstrained iterate near the feasible set
	projectionPenalty = 1e3
	// exact penalty per unit of drawdown beyond the ceiling
	drawdownPenalty = 1e2
	// slack allowed when checking constraints after solving
	feasibilityTol = 1e-6
	bisectionSteps = 200
)

var errInfeasibleBounds = errors.New("weight bounds cannot sum to 1")

// boxSimplex is the feasible set {w : lower ≤ w ≤ upper, Σw = 1}
type boxSimplex struct {
	lower, upper []float64
}

func newBoxSimplex(bounds []models.WeightBound) (*boxSimplex, error) {
	b := &boxSimplex{
		lower: make([]float64, len(bounds)),
		upper: make([]float64, len(bounds)),
	}
	var lo, hi float64
	for i, bound := range bounds {
		c := bound.Clamp()
		b.lower[i], b.upper[i] = c.Min, c.Max
		lo += c.Min
		hi += c.Max
	}
	if lo > 1+feasibilityTol || hi < 1-feasibilityTol {
		return nil, fmt.Errorf("%w (min total %.4f, max total %.4f)", errInfeasibleBounds, lo, hi)
	}
	return b, nil
}

// project writes the Euclidean projection of x onto the set into dst:
// w_i = clip(x_i - τ, lower_i, upper_i) with τ found by bisection.
func (b *boxSimplex) project(dst, x []float64) {
	tauLo, tauHi := math.Inf(1), math.Inf(-1)
	for i := range x {
		tauLo = math.Min(tauLo, x[i]-b.upper[i])
		tauHi = math.Max(tauHi, x[i]-b.lower[i])
	}
	for step := 0; step < bisectionSteps && tauHi-tauLo > 1e-15; step++ {
		tau := (tauLo + tauHi) / 2
		if b.clippedSum(x, tau) > 1 {
			tauLo = tau
		} else {
			tauHi = tau
		}
	}
	tau := (tauLo + tauHi) / 2
	for i := range x {
		dst[i] = clip(x[i]-tau, b.lower[i], b.upper[i])
	}
}

func (b *boxSimplex) clippedSum(x []float64, tau float64) float64 {
	var sum float64
	for i := range x {
		sum += clip(x[i]-tau, b.lower[i], b.upper[i])
	}
	return sum
}

func (b *boxSimplex) contains(w []float64) bool {
	var sum float64
	for i, wi := range w {
		if wi < b.lower[i]-feasibilityTol || wi > b.upper[i]+feasibilityTol {
			return false
		}
		sum += wi
	}
	return math.Abs(sum-1) <= feasibilityTol
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// solverSettings controls one constrained minimization
type solverSettings struct {
	maxIterations int
	// drawdownCeiling > 0 enables the historical max drawdown constraint
	drawdownCeiling float64
}

var acceptedStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.FunctionConvergence: true,
	optimize.MethodConverge:      true,
	optimize.GradientThreshold:   true,
	optimize.StepConvergence:     true,
}

// budgetStatuses end a run that ran out of iterations rather than failed.
// The best iterate is still usable when it improves on the start.
var budgetStatuses = map[optimize.Status]bool{
	optimize.IterationLimit:          true,
	optimize.FunctionEvaluationLimit: true,
	optimize.GradientEvaluationLimit: true,
}

// iterationsPerAsset scales the Nelder-Mead budget with the dimension
const iterationsPerAsset = 500

// solve minimizes f over box with Nelder-Mead, starting from the projection of
// the equal-weight point. Feasibility is enforced by projecting every iterate.
// A run that stops without converging is retried with BFGS on a finite
// difference gradient from the best point found.
func solve(f func([]float64) float64, snap *Snapshot, box *boxSimplex, settings solverSettings) ([]float64, error) {
	n := len(box.lower)
	w := make([]float64, n)

	penalized := func(x []float64) float64 {
		box.project(w, x)
		value := f(w)
		if math.IsNaN(value) {
			return math.Inf(1)
		}
		var dist float64
		for i := range x {
			d := x[i] - w[i]
			dist += d * d
		}
		value += projectionPenalty * dist
		if settings.drawdownCeiling > 0 {
			if excess := -snap.HistoricalDrawdown(w) - settings.drawdownCeiling; excess > 0 {
				value += drawdownPenalty * excess
			}
		}
		return value
	}

	start := make([]float64, n)
	for i := range start {
		start[i] = 1 / float64(n)
	}
	box.project(start, start)
	startValue := penalized(start)

	iterations := max(settings.maxIterations, iterationsPerAsset*n)
	result, err := optimize.Minimize(
		optimize.Problem{Func: penalized},
		start,
		&optimize.Settings{
			MajorIterations: iterations,
			FuncEvaluations: iterations * 10,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Iterations: 50,
			},
		},
		&optimize.NelderMead{},
	)
	if err != nil {
		return nil, fmt.Errorf("solver error: %w", err)
	}
	if !acceptedStatuses[result.Status] {
		if retry := retryBFGS(penalized, result.X, iterations); retry != nil && retry.F <= result.F {
			result = retry
		}
	}
	if !acceptedStatuses[result.Status] && (!budgetStatuses[result.Status] || result.F > startValue) {
		return nil, fmt.Errorf("solver did not converge: status=%v", result.Status)
	}

	weights := make([]float64, n)
	box.project(weights, result.X)
	if !box.contains(weights) {
		return nil, errors.New("solver returned weights outside bounds")
	}
	if settings.drawdownCeiling > 0 {
		if dd := snap.HistoricalDrawdown(weights); -dd > settings.drawdownCeiling+feasibilityTol {
			return nil, fmt.Errorf("max drawdown constraint not satisfiable: best drawdown %.4f exceeds ceiling %.4f", -dd, settings.drawdownCeiling)
		}
	}
	return weights, nil
}

// retryBFGS restarts from x with a quasi-Newton method. It returns nil when
// the retry errors, panics or ends in a status that is neither converged nor
// budget-limited.
func retryBFGS(penalized func([]float64) float64, x []float64, iterations int) (result *optimize.Result) {
	defer func() {
		if recover() != nil {
			result = nil
		}
	}()

	problem := optimize.Problem{
		Func: penalized,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, penalized, x, nil)
		},
	}
	retry, err := optimize.Minimize(problem, x, &optimize.Settings{
		MajorIterations: iterations,
		FuncEvaluations: iterations * 10,
	}, &optimize.BFGS{})
	if err != nil || retry == nil || math.IsNaN(retry.F) {
		return nil
	}
	if !acceptedStatuses[retry.Status] && !budgetStatuses[retry.Status] {
		return nil
	}
	return retry
}
