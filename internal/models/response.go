package models

import (
	"github.com/freetools/toolsite/internal/catalog"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
	Catalog CatalogStats      `json:"catalog"`
}

// CatalogStats summarises the loaded catalog
type CatalogStats struct {
	Source     string `json:"source"`
	Categories int    `json:"categories"`
	Tools      int    `json:"tools"`
	Featured   int    `json:"featured"`
}

// CategorySummary is a category plus the number of tools it lists
type CategorySummary struct {
	catalog.Category
	ToolCount  int    `json:"tool_count"`
	URL        string `json:"url"`
	ComingSoon bool   `json:"coming_soon"`
}

// CategoriesResponse is returned by GET /api/v1/categories
type CategoriesResponse struct {
	Status     string            `json:"status"`
	Categories []CategorySummary `json:"categories"`
	Count      int               `json:"count"`
}

// ToolsResponse is returned by the tool listing endpoints
type ToolsResponse struct {
	Status   string           `json:"status"`
	Category *CategorySummary `json:"category,omitempty"`
	Tools    []catalog.Tool   `json:"tools"`
	Count    int              `json:"count"`
}

// SearchResponse is returned by GET /api/v1/search
type SearchResponse struct {
	Status  string         `json:"status"`
	Query   string         `json:"query"`
	Backend string         `json:"backend"`
	Results []catalog.Tool `json:"results"`
	Count   int            `json:"count"`

	// SuggestedCategory is the category the query most likely targets
	SuggestedCategory *CategorySummary `json:"suggested_category,omitempty"`
}

// NewCategorySummary counts the tools listed under c
func NewCategorySummary(c catalog.Category, tools int) CategorySummary {
	return CategorySummary{
		Category:   c,
		ToolCount:  tools,
		URL:        catalog.CategoryPath(c.ID),
		ComingSoon: tools == 0,
	}
}

// ReindexResponse is returned by POST /api/v1/admin/reindex
type ReindexResponse struct {
	Status  string `json:"status"`
	Index   string `json:"index"`
	Indexed int    `json:"indexed"`
}
