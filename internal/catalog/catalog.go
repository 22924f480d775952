// Package catalog holds the immutable set of categories and tools listed on
// the site, and the read-only queries the page renderers and search layer
// run against it.
//
// A Catalog is built once at startup (see New, Load and Default) and never
// changes afterwards, so it is safe for concurrent use without locking.
// Every query returns copies; callers may modify results freely.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidCatalog is wrapped by every validation failure from New.
var ErrInvalidCatalog = errors.New("invalid catalog")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// FAQ is a single question shown in a category page accordion.
type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Category groups tools under a slug id. Identity is ID.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	FAQ         []FAQ  `json:"faq,omitempty" yaml:"faq,omitempty"`
}

// Tool is one listed utility page. Category is filled in by New with the
// id of the owning category.
type Tool struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Featured    bool   `json:"featured" yaml:"featured"`
	Category    string `json:"category" yaml:"category,omitempty"`
}

// Section is a category together with its ordered tools, the unit New
// builds a Catalog from.
type Section struct {
	Category `yaml:",inline"`
	Tools    []Tool `yaml:"tools"`
}

// Catalog maps category ids to ordered tool sequences. Category order is
// the order sections were given to New.
type Catalog struct {
	categories []Category
	tools      map[string][]Tool
	position   map[string]int
}

// New validates sections and builds a Catalog from them.
//
// Tools without a URL get the canonical "/{category}/{tool}" route. A tool
// that names a Category other than its section is rejected, as are
// duplicate ids, non-slug ids and URLs outside the site.
func New(sections []Section) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(sections)),
		tools:      make(map[string][]Tool, len(sections)),
		position:   make(map[string]int, len(sections)),
	}

	for i, s := range sections {
		cat := s.Category
		if !slugPattern.MatchString(cat.ID) {
			return nil, fmt.Errorf("%w: category %d: id %q is not a slug", ErrInvalidCatalog, i, cat.ID)
		}
		if _, dup := c.position[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.ID)
		}
		if strings.TrimSpace(cat.Name) == "" {
			return nil, fmt.Errorf("%w: category %q has no name", ErrInvalidCatalog, cat.ID)
		}

		tools := make([]Tool, 0, len(s.Tools))
		seen := make(map[string]bool, len(s.Tools))
		for _, t := range s.Tools {
			if !slugPattern.MatchString(t.ID) {
				return nil, fmt.Errorf("%w: category %q: tool id %q is not a slug", ErrInvalidCatalog, cat.ID, t.ID)
			}
			if seen[t.ID] {
				return nil, fmt.Errorf("%w: category %q: duplicate tool %q", ErrInvalidCatalog, cat.ID, t.ID)
			}
			seen[t.ID] = true

			if t.Category != "" && t.Category != cat.ID {
				return nil, fmt.Errorf("%w: tool %q declares category %q but is listed under %q",
					ErrInvalidCatalog, t.ID, t.Category, cat.ID)
			}
			t.Category = cat.ID

			if strings.TrimSpace(t.Title) == "" {
				return nil, fmt.Errorf("%w: tool %q has no title", ErrInvalidCatalog, t.ID)
			}
			if t.URL == "" {
				t.URL = ToolPath(cat.ID, t.ID)
			}
			if t.URL != ToolPath(cat.ID, t.ID) {
				return nil, fmt.Errorf("%w: tool %q url %q is not its route %q",
					ErrInvalidCatalog, t.ID, t.URL, ToolPath(cat.ID, t.ID))
			}
			tools = append(tools, t)
		}

		cat.FAQ = slices.Clone(cat.FAQ)
		c.position[cat.ID] = len(c.categories)
		c.categories = append(c.categories, cat)
		c.tools[cat.ID] = tools
	}

	return c, nil
}

// ToolPath is the route a tool is served under.
func ToolPath(categoryID, toolID string) string {
	return "/" + categoryID + "/" + toolID
}

// CategoryPath is the route a category listing is served under.
func CategoryPath(categoryID string) string {
	return "/" + categoryID
}

// CategoryByID returns the category with the given id. The boolean is false
// when no such category exists.
func (c *Catalog) CategoryByID(id string) (Category, bool) {
	i, ok := c.position[id]
	if !ok {
		return Category{}, false
	}
	return cloneCategory(c.categories[i]), true
}

// ToolsByCategory returns the tools of a category in catalog order. An empty
// category and an unknown id both yield an empty, non-nil slice.
func (c *Catalog) ToolsByCategory(id string) []Tool {
	tools := c.tools[id]
	if len(tools) == 0 {
		return []Tool{}
	}
	return slices.Clone(tools)
}

// FeaturedTools returns every featured tool, in catalog order.
func (c *Catalog) FeaturedTools() []Tool {
	featured := []Tool{}
	c.each(func(t Tool) bool {
		if t.Featured {
			featured = append(featured, t)
		}
		return true
	})
	return featured
}

// Search returns the tools whose title or description contains every
// whitespace-separated term of query, ignoring case. Results keep catalog
// order; there is no scoring. A blank query matches nothing.
func (c *Catalog) Search(query string) []Tool {
	terms := strings.Fields(strings.ToLower(query))
	results := []Tool{}
	if len(terms) == 0 {
		return results
	}
	c.each(func(t Tool) bool {
		if Matches(t, terms) {
			results = append(results, t)
		}
		return true
	})
	return results
}

// Matches reports whether every lower-cased term occurs in the tool's title
// or description.
func Matches(t Tool, terms []string) bool {
	title := strings.ToLower(t.Title)
	desc := strings.ToLower(t.Description)
	for _, term := range terms {
		if !strings.Contains(title, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	return true
}

// Categories returns all categories in catalog order, including empty ones.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cloneCategory(cat)
	}
	return out
}

// AllTools returns every tool, grouped by category, in catalog order.
func (c *Catalog) AllTools() []Tool {
	all := make([]Tool, 0, c.ToolCount())
	c.each(func(t Tool) bool {
		all = append(all, t)
		return true
	})
	return all
}

// Tool returns a single tool by category and tool id.
func (c *Catalog) Tool(categoryID, toolID string) (Tool, bool) {
	for _, t := range c.tools[categoryID] {
		if t.ID == toolID {
			return t, true
		}
	}
	return Tool{}, false
}

// Position returns the catalog-order index of a tool, used to put results
// from external search backends back into catalog order.
func (c *Catalog) Position(categoryID, toolID string) (int, bool) {
	n := 0
	for _, cat := range c.categories {
		for _, t := range c.tools[cat.ID] {
			if cat.ID == categoryID && t.ID == toolID {
				return n, true
			}
			n++
		}
	}
	return 0, false
}

// ToolCount is the total number of tools across categories.
func (c *Catalog) ToolCount() int {
	n := 0
	for _, tools := range c.tools {
		n += len(tools)
	}
	return n
}

// CategoryCount is the number of categories, including empty ones.
func (c *Catalog) CategoryCount() int {
	return len(c.categories)
}

func (c *Catalog) each(fn func(Tool) bool) {
	for _, cat := range c.categories {
		for _, t := range c.tools[cat.ID] {
			if !fn(t) {
				return
			}
		}
	}
}

func cloneCategory(c Category) Category {
	c.FAQ = slices.Clone(c.FAQ)
	return c
}
