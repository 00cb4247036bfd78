package handlers

import (
	"net/http"
	"strings"

	"github.com/findosh/quantcore/internal/models"
)

// APIMarketStatus returns market status
func (h *Handler) APIMarketStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.marketDataSvc.GetMarketStatus())
}

// APIQuote returns a quote for ?ticker=X, or a map of quotes for ?tickers=X,Y
func (h *Handler) APIQuote(w http.ResponseWriter, r *http.Request) {
	if list := r.URL.Query().Get("tickers"); list != "" {
		var tickers []string
		for _, t := range strings.Split(list, ",") {
			if t = models.NormalizeTicker(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		quotes, err := h.marketDataSvc.GetQuotes(r.Context(), tickers)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadGateway)
			return
		}
		h.writeJSON(w, http.StatusOK, quotes)
		return
	}

	ticker := models.NormalizeTicker(r.URL.Query().Get("ticker"))
	if ticker == "" {
		h.jsonError(w, "ticker parameter required", http.StatusBadRequest)
		return
	}

	quote, err := h.marketDataSvc.GetQuote(r.Context(), ticker)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}
