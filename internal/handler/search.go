package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/metrics"
	"github.com/freetools/toolsite/internal/middleware"
	"github.com/freetools/toolsite/internal/models"
	"github.com/freetools/toolsite/internal/render"
	"github.com/freetools/toolsite/internal/security"
	"github.com/freetools/toolsite/internal/service"
)

var errSearchUnavailable = errors.New("search is temporarily unavailable")

// SearchHandler serves the search page and the JSON search API backing the
// search box.
type SearchHandler struct {
	cat         *catalog.Catalog
	renderer    *render.Renderer
	searcher    service.Searcher
	router      *service.CategoryRouter
	validator   *security.QueryValidator
	auditLogger *security.AuditLogger
	metrics     *metrics.Metrics
	maxResults  int
}

func NewSearchHandler(
	cat *catalog.Catalog,
	renderer *render.Renderer,
	searcher service.Searcher,
	router *service.CategoryRouter,
	validator *security.QueryValidator,
	auditLogger *security.AuditLogger,
	m *metrics.Metrics,
	maxResults int,
) *SearchHandler {
	return &SearchHandler{
		cat:         cat,
		renderer:    renderer,
		searcher:    searcher,
		router:      router,
		validator:   validator,
		auditLogger: auditLogger,
		metrics:     m,
		maxResults:  maxResults,
	}
}

type searchOutcome struct {
	query     string
	tools     []catalog.Tool
	suggested *catalog.Category
}

// run validates the q parameter and searches. A blank query yields an empty
// outcome without touching the backend.
func (h *SearchHandler) run(r *http.Request, limit int) (searchOutcome, error) {
	client := middleware.ClientIP(r)
	raw := r.URL.Query().Get("q")

	query, err := h.validator.Normalize(raw)
	if err != nil {
		h.auditLogger.LogRejectedQuery(raw, client, err.Error())
		return searchOutcome{query: raw}, err
	}
	out := searchOutcome{query: query, tools: []catalog.Tool{}}
	if query == "" {
		return out, nil
	}

	start := time.Now()
	tools, err := h.searcher.Search(r.Context(), query, limit)
	execMs := time.Since(start).Milliseconds()
	h.metrics.ObserveSearch(h.searcher.Name(), len(tools), err)
	if err != nil {
		h.auditLogger.LogSearch(query, client, h.searcher.Name(), 0, execMs, err.Error())
		return out, errSearchUnavailable
	}
	h.auditLogger.LogSearch(query, client, h.searcher.Name(), len(tools), execMs, "")

	if tools != nil {
		out.tools = tools
	}
	if route := h.router.Route(query); route.Matched() {
		if c, ok := h.cat.CategoryByID(route.CategoryID); ok {
			out.suggested = &c
		}
	}
	return out, nil
}

// Page handles GET /search?q=
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	out, err := h.run(r, h.maxResults)

	view := render.SearchView{
		Query:     out.query,
		Results:   out.tools,
		Backend:   h.searcher.Name(),
		Suggested: out.suggested,
	}
	status := http.StatusOK
	if err != nil {
		view.Error = err.Error()
		view.Results = nil
		status = statusFor(err)
	}

	p := h.renderer.Page("Search", "Search every free tool on the site.", "/search", view)
	p.Query = out.query
	writePage(w, r, h.renderer, status, render.PageSearch, p)
}

// API handles GET /api/v1/search?q=&limit=
func (h *SearchHandler) API(w http.ResponseWriter, r *http.Request) {
	limit := h.maxResults
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			models.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	out, err := h.run(r, limit)
	if err != nil {
		models.WriteError(w, statusFor(err), err.Error())
		return
	}

	resp := models.SearchResponse{
		Status:  "success",
		Query:   out.query,
		Backend: h.searcher.Name(),
		Results: out.tools,
		Count:   len(out.tools),
	}
	if out.suggested != nil {
		summary := models.NewCategorySummary(*out.suggested, len(h.cat.ToolsByCategory(out.suggested.ID)))
		resp.SuggestedCategory = &summary
	}
	models.WriteJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, security.ErrQueryTooLong), errors.Is(err, security.ErrQueryRejected):
		return http.StatusBadRequest
	case errors.Is(err, errSearchUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
