package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/adityavk/nsescreener/internal/api/handlers"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	universeHandler *handlers.UniverseHandler,
	scanHandler *handlers.ScanHandler,
	stockHandler *handlers.StockHandler,
	refreshStream *RefreshStream,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Universe endpoints
	api.HandleFunc("/universe", universeHandler.GetUniverse).Methods("GET")
	api.HandleFunc("/universe/refresh", universeHandler.Refresh).Methods("POST")
	api.HandleFunc("/universe/cache", universeHandler.GetCacheInfo).Methods("GET")
	api.HandleFunc("/universe/cache", universeHandler.ClearCache).Methods("DELETE")
	api.HandleFunc("/universe/status", universeHandler.GetStatus).Methods("GET")
	api.HandleFunc("/universe/snapshot", universeHandler.GetSnapshot).Methods("GET")

	// Scan endpoints
	api.HandleFunc("/scan/sma", scanHandler.ScanSMA).Methods("GET")
	api.HandleFunc("/scan/near-sma", scanHandler.ScanNearSMA).Methods("GET")
	api.HandleFunc("/scan/open-extremes", scanHandler.ScanOpenExtremes).Methods("GET")
	api.HandleFunc("/scan/breakouts", scanHandler.ScanBreakouts).Methods("GET")

	// Stock endpoints
	api.HandleFunc("/stocks/{symbol}/prices", stockHandler.GetDailyPrices).Methods("GET")

	// Live refresh progress for the dashboard
	if refreshStream != nil {
		r.HandleFunc("/ws/refresh", refreshStream.Handle)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "nsescreener-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
