package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adityavk/nsescreener/internal/prices"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// StockHandler handles per-stock API endpoints
type StockHandler struct {
	priceRepo *prices.Repository
	logger    *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(priceRepo *prices.Repository, log *logger.Logger) *StockHandler {
	return &StockHandler{
		priceRepo: priceRepo,
		logger:    log,
	}
}

// DailyPriceResponse represents a daily price record for API response
type DailyPriceResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// GetDailyPrices returns daily price data for a stock
// GET /api/stocks/{symbol}/prices?days=60
func (h *StockHandler) GetDailyPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	days := 60
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	bars, err := h.priceRepo.GetBars(ctx, symbol, days)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"days":   days,
		}).Error("Failed to get daily prices")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve daily prices")
		return
	}

	result := make([]DailyPriceResponse, len(bars))
	for i, b := range bars {
		result[i] = DailyPriceResponse{
			Date:   b.Date.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"symbol":  symbol,
		"data":    result,
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
