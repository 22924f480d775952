package handler

import (
	"bytes"
	"net/http"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/metrics"
	"github.com/freetools/toolsite/internal/middleware"
	"github.com/freetools/toolsite/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// colorCategory owns the /developer/{color} converter pages
const colorCategory = "developer"

// PageHandler serves the server-rendered HTML pages
type PageHandler struct {
	cat      *catalog.Catalog
	renderer *render.Renderer
	metrics  *metrics.Metrics
}

func NewPageHandler(cat *catalog.Catalog, renderer *render.Renderer, m *metrics.Metrics) *PageHandler {
	return &PageHandler{cat: cat, renderer: renderer, metrics: m}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	site := h.renderer.Site()
	p := h.renderer.Page("", "Free calculators, converters and developer tools.", "/",
		render.Home(h.cat, site.HomeFeaturedLimit))
	writePage(w, r, h.renderer, http.StatusOK, render.PageHome, p)
}

// AllTools handles GET /all-tools
func (h *PageHandler) AllTools(w http.ResponseWriter, r *http.Request) {
	p := h.renderer.Page("All tools", "Every free tool on the site, grouped by category.", "/all-tools",
		render.AllTools(h.cat))
	writePage(w, r, h.renderer, http.StatusOK, render.PageAllTools, p)
}

// Category handles GET /{category}
func (h *PageHandler) Category(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category")
	view, ok := render.Category(h.cat, id)
	if !ok {
		h.notFound(w, r, "category")
		return
	}
	p := h.renderer.Page(view.Category.Name, view.Category.Description, catalog.CategoryPath(id), view)
	writePage(w, r, h.renderer, http.StatusOK, render.PageCategory, p)
}

// Tool handles GET /{category}/{tool}
func (h *PageHandler) Tool(w http.ResponseWriter, r *http.Request) {
	h.tool(w, r, chi.URLParam(r, "category"), chi.URLParam(r, "tool"))
}

func (h *PageHandler) tool(w http.ResponseWriter, r *http.Request, categoryID, toolID string) {
	view, ok := render.Tool(h.cat, categoryID, toolID)
	if !ok {
		h.notFound(w, r, "tool")
		return
	}
	p := h.renderer.Page(view.Tool.Title, view.Tool.Description, view.Tool.URL, view)
	writePage(w, r, h.renderer, http.StatusOK, render.PageTool, p)
}

// Color handles GET /developer/{color}. Developer tools that are not color
// converters share the path prefix and are served as plain tool pages.
func (h *PageHandler) Color(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "color")
	view, ok := render.Color(h.cat, slug, r.URL.Query().Get("value"))
	if !ok {
		if _, isTool := h.cat.Tool(colorCategory, slug); isTool {
			h.tool(w, r, colorCategory, slug)
			return
		}
		h.notFound(w, r, "color")
		return
	}
	p := h.renderer.Page(view.Tool.Title, view.Tool.Description, view.Tool.URL, view)
	writePage(w, r, h.renderer, http.StatusOK, render.PageColor, p)
}

// NotFound renders the 404 page for any unmatched route
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "route")
}

func (h *PageHandler) notFound(w http.ResponseWriter, r *http.Request, kind string) {
	h.metrics.ObserveNotFound(kind)
	site := h.renderer.Site()
	view := render.NotFound(h.cat, site.NotFoundSuggestions, r.URL.Path)
	p := h.renderer.Page("Page not found", "", r.URL.Path, view)
	writePage(w, r, h.renderer, http.StatusNotFound, render.PageNotFound, p)
}

// writePage renders into a buffer first so a template failure still yields
// a clean 500 instead of a truncated page.
func writePage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, p render.Page) {
	var buf bytes.Buffer
	if err := renderer.Execute(&buf, name, p); err != nil {
		log.Error().
			Err(err).
			Str("page", name).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
