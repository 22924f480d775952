package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/freetools/toolsite/internal/models"
)

const version = "1.0.0"

// HealthChecker is implemented by services that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler handles GET /health with optional dependency checks
type HealthHandler struct {
	stats models.CatalogStats
	es    HealthChecker
}

// NewHealthHandler takes a nil es when search runs in memory.
func NewHealthHandler(stats models.CatalogStats, es HealthChecker) *HealthHandler {
	return &HealthHandler{stats: stats, es: es}
}

// Health handles GET /health. An unreachable Elasticsearch reports
// "degraded" but still answers 200: search falls back to memory and every
// page keeps working.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok", "catalog": "ok"}
	overallStatus := "healthy"

	// Use a short timeout for health checks so they don't block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.es != nil {
		if err := h.es.TestConnection(ctx); err != nil {
			checks["elasticsearch"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["elasticsearch"] = "ok"
		}
	} else {
		checks["elasticsearch"] = "disabled"
	}

	if h.stats.Tools == 0 {
		checks["catalog"] = "empty"
		overallStatus = "degraded"
	}

	models.WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
		Catalog: h.stats,
	})
}
