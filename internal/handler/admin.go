package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/freetools/toolsite/internal/middleware"
	"github.com/freetools/toolsite/internal/models"
	"github.com/freetools/toolsite/internal/security"
	"github.com/rs/zerolog/log"
)

// Indexer pushes the catalog into an external search index
type Indexer interface {
	IndexCatalog(ctx context.Context) (int, error)
	Index() string
}

// AdminHandler serves the API-key protected maintenance endpoints
type AdminHandler struct {
	indexer      Indexer
	auditLogger  *security.AuditLogger
	apiKeyHeader string
}

// NewAdminHandler accepts a nil indexer when the memory backend is in use.
func NewAdminHandler(indexer Indexer, auditLogger *security.AuditLogger, apiKeyHeader string) *AdminHandler {
	return &AdminHandler{indexer: indexer, auditLogger: auditLogger, apiKeyHeader: apiKeyHeader}
}

// Reindex handles POST /api/v1/admin/reindex
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.indexer == nil {
		models.WriteError(w, http.StatusConflict, "reindex requires the elasticsearch search backend")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	apiKey := r.Header.Get(h.apiKeyHeader)
	start := time.Now()
	n, err := h.indexer.IndexCatalog(ctx)
	if err != nil {
		h.auditLogger.LogReindex(apiKey, h.indexer.Index(), n, err.Error())
		models.WriteError(w, http.StatusBadGateway, "reindex failed: "+err.Error())
		return
	}
	h.auditLogger.LogReindex(apiKey, h.indexer.Index(), n, "")

	log.Info().
		Str("index", h.indexer.Index()).
		Int("indexed", n).
		Dur("duration", time.Since(start)).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("catalog reindexed")

	models.WriteJSON(w, http.StatusOK, models.ReindexResponse{
		Status:  "success",
		Index:   h.indexer.Index(),
		Indexed: n,
	})
}
