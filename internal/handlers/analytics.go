package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/findosh/quantcore/internal/models"
	"github.com/findosh/quantcore/internal/services/analytics"
)

type windowRequest struct {
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// window resolves the request into a models.Window. An explicit start date
// takes precedence over the period.
func (wr windowRequest) window() (models.Window, error) {
	if wr.StartDate == "" {
		if wr.EndDate != "" {
			return models.Window{}, fmt.Errorf("end_date requires start_date")
		}
		if wr.Period == "" {
			return models.PeriodWindow(models.DefaultPeriod), nil
		}
		p, ok := models.ParsePeriod(wr.Period)
		if !ok {
			return models.Window{}, fmt.Errorf("unknown period %q", wr.Period)
		}
		return models.PeriodWindow(p), nil
	}

	start, err := time.Parse(time.DateOnly, wr.StartDate)
	if err != nil {
		return models.Window{}, fmt.Errorf("invalid start_date: %w", err)
	}
	var end time.Time
	if wr.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, wr.EndDate); err != nil {
			return models.Window{}, fmt.Errorf("invalid end_date: %w", err)
		}
		if !end.After(start) {
			return models.Window{}, fmt.Errorf("end_date must be after start_date")
		}
	}
	return models.RangeWindow(start, end), nil
}

type analyzeRequest struct {
	Holdings []models.Holding `json:"holdings"`
	windowRequest
}

// APIAnalyze returns realized risk and performance for a set of holdings
func (h *Handler) APIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	window, err := req.window()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.analyticsSvc.Analyze(r.Context(), req.Holdings, window)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type monteCarloRequest struct {
	Simulations     int `json:"n_simulations"`
	ConfidenceLevel int `json:"confidence_level"`
}

type optimizeRequest struct {
	Holdings       []models.Holding              `json:"holdings"`
	Strategy       string                        `json:"strategy"`
	TargetDuration string                        `json:"target_duration"`
	Constraints    map[string]models.WeightBound `json:"constraints"`
	MaxDrawdown    float64                       `json:"max_drawdown"`
	WholeShares    bool                          `json:"whole_shares"`
	AccountType    string                        `json:"account_type"`
	MonteCarlo     *monteCarloRequest            `json:"monte_carlo"`
	windowRequest
}

// APIOptimize solves for target weights and optionally projects them forward
func (h *Handler) APIOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	window, err := req.window()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	strategy := analytics.Strategy(analytics.MaxSharpe{})
	if req.Strategy != "" {
		if strategy, err = analytics.ParseStrategy(req.Strategy); err != nil {
			h.serviceError(w, r, err)
			return
		}
	}

	accountType, ok := models.ParseAccountType(req.AccountType)
	if !ok {
		h.jsonError(w, fmt.Sprintf("unknown account_type %q", req.AccountType), http.StatusBadRequest)
		return
	}

	horizon := models.DefaultHorizon
	if req.TargetDuration != "" {
		horizon = models.Horizon(req.TargetDuration)
	}

	svcReq := analytics.OptimizeRequest{
		Holdings:    req.Holdings,
		Strategy:    strategy,
		Window:      window,
		Horizon:     horizon,
		Bounds:      req.Constraints,
		MaxDrawdown: req.MaxDrawdown,
		WholeShares: req.WholeShares,
		AccountType: accountType,
	}
	if req.MonteCarlo != nil {
		level := req.MonteCarlo.ConfidenceLevel
		if level == 0 {
			level = 95
		}
		svcReq.MonteCarlo = &analytics.SimulationRequest{
			Simulations:     req.MonteCarlo.Simulations,
			ConfidenceLevel: level,
		}
	}

	result, err := h.analyticsSvc.Optimize(r.Context(), svcReq)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
