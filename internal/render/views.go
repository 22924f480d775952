package render

import (
	"strings"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/color"
)

// colorCategory is the category whose /{id}/{slug} routes serve the color
// converter pages.
const colorCategory = "developer"

// relatedLimit bounds the "more tools" list on a tool page.
const relatedLimit = 4

// FooterGroup is one column of footer links.
type FooterGroup struct {
	Category catalog.Category
	Tools    []catalog.Tool
}

// CategoryCard is a category tile on the home page.
type CategoryCard struct {
	Category  catalog.Category
	ToolCount int
}

type HomeView struct {
	Categories []CategoryCard
	Featured   []catalog.Tool
}

// CategoryView is a category listing. ComingSoon is set when the category
// has no tools yet, which is a normal page, not an error.
type CategoryView struct {
	Category   catalog.Category
	Tools      []catalog.Tool
	ComingSoon bool
}

type AllToolsView struct {
	Sections []CategoryView
	Total    int
}

type NotFoundView struct {
	Path        string
	Suggestions []catalog.Tool
}

type ToolView struct {
	Category catalog.Category
	Tool     catalog.Tool
	Related  []catalog.Tool
}

type ColorView struct {
	ToolView
	Variant  color.Variant
	Input    string
	Output   string
	Swatch   string
	Error    string
	Siblings []catalog.Tool
}

type SearchView struct {
	Query     string
	Results   []catalog.Tool
	Backend   string
	Suggested *catalog.Category
	Error     string
}

// Home lists every category with its tool count, and up to featuredLimit
// featured tools.
func Home(cat *catalog.Catalog, featuredLimit int) HomeView {
	cats := cat.Categories()
	cards := make([]CategoryCard, len(cats))
	for i, c := range cats {
		cards[i] = CategoryCard{Category: c, ToolCount: len(cat.ToolsByCategory(c.ID))}
	}
	return HomeView{
		Categories: cards,
		Featured:   First(cat.FeaturedTools(), featuredLimit),
	}
}

// Category resolves a category listing. The boolean is false when the id is
// unknown and the caller must render the not-found page.
func Category(cat *catalog.Catalog, id string) (CategoryView, bool) {
	c, ok := cat.CategoryByID(id)
	if !ok {
		return CategoryView{}, false
	}
	tools := cat.ToolsByCategory(id)
	return CategoryView{
		Category:   c,
		Tools:      tools,
		ComingSoon: len(tools) == 0,
	}, true
}

// AllTools lists every non-empty category in catalog order. Empty
// categories are skipped.
func AllTools(cat *catalog.Catalog) AllToolsView {
	var view AllToolsView
	for _, c := range cat.Categories() {
		tools := cat.ToolsByCategory(c.ID)
		if len(tools) == 0 {
			continue
		}
		view.Sections = append(view.Sections, CategoryView{Category: c, Tools: tools})
		view.Total += len(tools)
	}
	return view
}

// NotFound suggests the first n featured tools regardless of the path that
// was requested.
func NotFound(cat *catalog.Catalog, n int, path string) NotFoundView {
	return NotFoundView{
		Path:        path,
		Suggestions: First(cat.FeaturedTools(), n),
	}
}

// Tool resolves a single tool page.
func Tool(cat *catalog.Catalog, categoryID, toolID string) (ToolView, bool) {
	c, ok := cat.CategoryByID(categoryID)
	if !ok {
		return ToolView{}, false
	}
	t, ok := cat.Tool(categoryID, toolID)
	if !ok {
		return ToolView{}, false
	}

	related := make([]catalog.Tool, 0, relatedLimit)
	for _, other := range cat.ToolsByCategory(categoryID) {
		if other.ID == t.ID {
			continue
		}
		if len(related) == relatedLimit {
			break
		}
		related = append(related, other)
	}
	return ToolView{Category: c, Tool: t, Related: related}, true
}

// Color resolves a color converter page for one of the fixed converter
// slugs and converts input, falling back to the variant's example. An
// unparsable input is reported in Error, not as a missing page.
func Color(cat *catalog.Catalog, slug, input string) (ColorView, bool) {
	variant, ok := color.Lookup(slug)
	if !ok {
		return ColorView{}, false
	}

	tv, ok := Tool(cat, colorCategory, slug)
	if !ok {
		c, _ := cat.CategoryByID(colorCategory)
		tv = ToolView{
			Category: c,
			Tool: catalog.Tool{
				ID:       slug,
				Title:    variantTitle(variant),
				URL:      catalog.ToolPath(colorCategory, slug),
				Category: colorCategory,
			},
		}
	}

	view := ColorView{ToolView: tv, Variant: variant, Input: input}
	if view.Input == "" {
		view.Input = variant.Example
	}
	if c, err := color.Parse(variant.From, view.Input); err != nil {
		view.Error = err.Error()
	} else {
		view.Output = variant.To.Render(c)
		view.Swatch = color.HEX.Render(c)
	}

	for _, v := range color.Variants() {
		if v.Slug == slug {
			continue
		}
		if t, ok := cat.Tool(colorCategory, v.Slug); ok {
			view.Siblings = append(view.Siblings, t)
		}
	}
	return view, true
}

// Footer samples the first perCategory tools of every non-empty category.
func Footer(cat *catalog.Catalog, perCategory int) []FooterGroup {
	var groups []FooterGroup
	for _, c := range cat.Categories() {
		tools := First(cat.ToolsByCategory(c.ID), perCategory)
		if len(tools) == 0 {
			continue
		}
		groups = append(groups, FooterGroup{Category: c, Tools: tools})
	}
	return groups
}

// First returns at most n leading tools.
func First(tools []catalog.Tool, n int) []catalog.Tool {
	if n < 0 {
		n = 0
	}
	if len(tools) > n {
		return tools[:n]
	}
	return tools
}

func variantTitle(v color.Variant) string {
	return strings.ToUpper(string(v.From)) + " to " + strings.ToUpper(string(v.To)) + " Converter"
}
