package service

import (
	"strings"

	"github.com/freetools/toolsite/internal/catalog"
)

// RoutingResult names the category a search query most likely targets
type RoutingResult struct {
	CategoryID string
	Confidence float64
	Score      int
	Reasoning  string
}

// Matched reports whether the query pointed at any category
func (r RoutingResult) Matched() bool {
	return r.CategoryID != ""
}

// CategoryRouter suggests a category for a free-text search query by
// keyword overlap with category names, descriptions and tool titles.
type CategoryRouter struct {
	categories []catalog.Category
	keywords   map[string][]string
}

func NewCategoryRouter(cat *catalog.Catalog) *CategoryRouter {
	r := &CategoryRouter{
		categories: cat.Categories(),
		keywords:   make(map[string][]string),
	}
	for _, c := range r.categories {
		words := strings.Fields(strings.ToLower(c.ID + " " + c.Name + " " + c.Description))
		for _, t := range cat.ToolsByCategory(c.ID) {
			words = append(words, strings.Fields(strings.ToLower(t.Title))...)
		}
		r.keywords[c.ID] = dedupe(words)
	}
	return r
}

// Route scores every category and returns the best one. Ties go to the
// category listed first; a query with no matching keyword routes nowhere.
func (r *CategoryRouter) Route(query string) RoutingResult {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return RoutingResult{Reasoning: "empty query"}
	}

	best := RoutingResult{Reasoning: "no category keywords matched"}
	total := 0
	for _, c := range r.categories {
		score := 0
		for _, term := range terms {
			if len(term) < 3 {
				continue
			}
			for _, kw := range r.keywords[c.ID] {
				if strings.HasPrefix(kw, term) {
					score++
					break
				}
			}
		}
		total += score
		if score > best.Score {
			best = RoutingResult{
				CategoryID: c.ID,
				Score:      score,
				Reasoning:  "query matches " + c.Name + " keywords",
			}
		}
	}

	if best.Matched() {
		best.Confidence = float64(best.Score) / float64(total)
	}
	return best
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?&()")
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
