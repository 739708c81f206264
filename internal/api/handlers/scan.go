package handlers

import (
	"net/http"
	"strconv"

	"github.com/adityavk/nsescreener/internal/analysis"
	"github.com/adityavk/nsescreener/internal/prices"
	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// ScanHandler handles technical-scan API endpoints. Scans run over the
// filtered universe using bars already persisted by the price fetcher.
type ScanHandler struct {
	orchestrator *universe.Orchestrator
	priceRepo    *prices.Repository
	logger       *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(orch *universe.Orchestrator, priceRepo *prices.Repository, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		orchestrator: orch,
		priceRepo:    priceRepo,
		logger:       log,
	}
}

// ScanSMA returns universe symbols trading above their moving average
// GET /api/scan/sma?period=20
func (h *ScanHandler) ScanSMA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period := analysis.DefaultSMAPeriod
	if periodStr := r.URL.Query().Get("period"); periodStr != "" {
		if p, err := strconv.Atoi(periodStr); err == nil && p > 0 {
			period = p
		}
	}

	symbols, err := h.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe for SMA scan")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	barsBySymbol, err := h.priceRepo.GetBarsBulk(ctx, symbols, period)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bars for SMA scan")
		respondError(w, http.StatusInternalServerError, "Failed to load price history")
		return
	}

	results := analysis.ScanAboveSMA(barsBySymbol, period)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"period":  period,
		"scanned": len(symbols),
		"count":   len(results),
		"results": results,
	})
}

// ScanOpenExtremes returns universe symbols whose latest bar opened at
// its high or low
// GET /api/scan/open-extremes
func (h *ScanHandler) ScanOpenExtremes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbols, err := h.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe for pattern scan")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	barsBySymbol, err := h.priceRepo.GetBarsBulk(ctx, symbols, 1)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bars for pattern scan")
		respondError(w, http.StatusInternalServerError, "Failed to load price history")
		return
	}

	results := analysis.ScanOpenExtremes(barsBySymbol)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"scanned": len(symbols),
		"count":   len(results),
		"results": results,
	})
}

// ScanBreakouts returns symbols confirming an open=high setup: the
// previous session opened at its high and the latest close cleared
// that high. Needs the last two bars per symbol.
// GET /api/scan/breakouts
func (h *ScanHandler) ScanBreakouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbols, err := h.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe for breakout scan")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	barsBySymbol, err := h.priceRepo.GetBarsBulk(ctx, symbols, 2)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bars for breakout scan")
		respondError(w, http.StatusInternalServerError, "Failed to load price history")
		return
	}

	results := analysis.ScanOpenHighBreakouts(barsBySymbol)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"scanned": len(symbols),
		"count":   len(results),
		"results": results,
	})
}

// ScanNearSMA returns universe symbols trading within a percent band
// of their moving average, labeled by breakout status
// GET /api/scan/near-sma?period=20&distance=5
func (h *ScanHandler) ScanNearSMA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period := analysis.DefaultSMAPeriod
	if periodStr := r.URL.Query().Get("period"); periodStr != "" {
		if p, err := strconv.Atoi(periodStr); err == nil && p > 0 {
			period = p
		}
	}
	distance := analysis.DefaultNearSMADistance
	if distStr := r.URL.Query().Get("distance"); distStr != "" {
		if d, err := strconv.ParseFloat(distStr, 64); err == nil && d > 0 {
			distance = d
		}
	}

	symbols, err := h.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe for near-SMA scan")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	// One extra bar so fresh breakouts can be told from holding ones
	barsBySymbol, err := h.priceRepo.GetBarsBulk(ctx, symbols, period+1)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bars for near-SMA scan")
		respondError(w, http.StatusInternalServerError, "Failed to load price history")
		return
	}

	results := analysis.ScanNearSMA(barsBySymbol, period, distance)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"period":   period,
		"distance": distance,
		"scanned":  len(symbols),
		"count":    len(results),
		"results":  results,
	})
}
