package handler

import (
	"net/http"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/models"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler exposes the catalog queries as JSON
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// Categories handles GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := h.cat.Categories()
	summaries := make([]models.CategorySummary, 0, len(cats))
	for _, c := range cats {
		summaries = append(summaries, models.NewCategorySummary(c, len(h.cat.ToolsByCategory(c.ID))))
	}
	models.WriteJSON(w, http.StatusOK, models.CategoriesResponse{
		Status:     "success",
		Categories: summaries,
		Count:      len(summaries),
	})
}

// CategoryTools handles GET /api/v1/categories/{id}/tools
func (h *CatalogHandler) CategoryTools(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := h.cat.CategoryByID(id)
	if !ok {
		models.WriteError(w, http.StatusNotFound, "category not found: "+id)
		return
	}
	tools := h.cat.ToolsByCategory(id)
	summary := models.NewCategorySummary(c, len(tools))
	models.WriteJSON(w, http.StatusOK, models.ToolsResponse{
		Status:   "success",
		Category: &summary,
		Tools:    tools,
		Count:    len(tools),
	})
}

// Featured handles GET /api/v1/featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	tools := h.cat.FeaturedTools()
	models.WriteJSON(w, http.StatusOK, models.ToolsResponse{
		Status: "success",
		Tools:  tools,
		Count:  len(tools),
	})
}
