package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// SnapshotReader reads the persisted universe history
type SnapshotReader interface {
	GetLatestSnapshot(ctx context.Context) (*contracts.CacheEntry, error)
}

// UniverseHandler handles filtered-universe API endpoints
type UniverseHandler struct {
	orchestrator *universe.Orchestrator
	snapshots    SnapshotReader
	logger       *logger.Logger
}

// NewUniverseHandler creates a new universe handler. snapshots may be
// nil when no history store is configured.
func NewUniverseHandler(orch *universe.Orchestrator, snapshots SnapshotReader, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		orchestrator: orch,
		snapshots:    snapshots,
		logger:       log,
	}
}

// GetUniverse returns the current filtered symbol list
// GET /api/universe?refresh=true
func (h *UniverseHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	forceRefresh := r.URL.Query().Get("refresh") == "true"

	symbols, err := h.orchestrator.GetFilteredUniverse(ctx, forceRefresh)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve universe")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(symbols),
		"symbols": symbols,
	})
}

// Refresh recomputes the filtered list, bypassing the cache
// POST /api/universe/refresh
func (h *UniverseHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbols, err := h.orchestrator.Refresh(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh universe")
		respondError(w, http.StatusInternalServerError, "Failed to refresh universe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(symbols),
		"symbols": symbols,
	})
}

// GetCacheInfo reports the cache state without the symbol list
// GET /api/universe/cache
func (h *UniverseHandler) GetCacheInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.orchestrator.CacheInfo(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache info")
		respondError(w, http.StatusInternalServerError, "Failed to read cache info")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cache":   info,
	})
}

// ClearCache removes the persisted universe cache
// DELETE /api/universe/cache
func (h *UniverseHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Clear(r.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear cache")
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// GetSnapshot returns the most recent universe saved to the history
// table. Unlike the cache this survives cache clears and date rollover,
// so the dashboard can show the last known list while a refresh runs.
// GET /api/universe/snapshot
func (h *UniverseHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		respondError(w, http.StatusNotFound, "Snapshot history not configured")
		return
	}

	entry, err := h.snapshots.GetLatestSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, contracts.ErrDataUnavailable) {
			respondError(w, http.StatusNotFound, "No universe snapshot saved yet")
			return
		}
		h.logger.WithError(err).Error("Failed to read universe snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to read universe snapshot")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"snapshot": entry,
	})
}

// GetStatus reports the outcome of the most recent resolution
// GET /api/universe/status
func (h *UniverseHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  h.orchestrator.Status(),
	})
}
