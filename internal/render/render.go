// Package render builds page view data from the catalog and executes the
// site's HTML templates.
//
// The view builders (Home, Category, AllTools, NotFound, Tool, Color,
// Footer) are pure functions of the catalog and route parameters. Renderer
// wraps a view in the shared layout: navigation, search box, ad slots,
// footer links and theme script.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/freetools/toolsite/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Execute.
const (
	PageHome     = "home"
	PageCategory = "category"
	PageAllTools = "all_tools"
	PageTool     = "tool"
	PageColor    = "color"
	PageSearch   = "search"
	PageNotFound = "not_found"
)

// defaultAPIPrefix is where the search box looks for the JSON API when the
// site does not say otherwise.
const defaultAPIPrefix = "/api/v1"

var pageNames = []string{PageHome, PageCategory, PageAllTools, PageTool, PageColor, PageSearch, PageNotFound}

// Site carries the site-wide settings the layout needs.
type Site struct {
	Name                   string
	BaseURL                string
	APIPrefix              string
	AdsEnabled             bool
	AdsClientID            string
	NotFoundSuggestions    int
	FooterLinksPerCategory int
	HomeFeaturedLimit      int
}

// AdSlot is the data for one ad placeholder.
type AdSlot struct {
	Site Site
	Slot string
}

// Page is the value every template is executed with.
type Page struct {
	Site        Site
	Title       string
	Description string
	Canonical   string
	Query       string
	Nav         []catalog.Category
	Footer      []FooterGroup
	Content     any
}

// Renderer executes page templates inside the shared layout. Navigation and
// footer are computed once, since the catalog never changes.
type Renderer struct {
	site   Site
	nav    []catalog.Category
	footer []FooterGroup
	pages  map[string]*template.Template
}

func NewRenderer(cat *catalog.Catalog, site Site) (*Renderer, error) {
	if site.APIPrefix == "" {
		site.APIPrefix = defaultAPIPrefix
	}
	r := &Renderer{
		site:   site,
		nav:    cat.Categories(),
		footer: Footer(cat, site.FooterLinksPerCategory),
		pages:  make(map[string]*template.Template, len(pageNames)),
	}

	funcs := template.FuncMap{
		"categoryPath": catalog.CategoryPath,
		"adSlot": func(site Site, slot string) AdSlot {
			return AdSlot{Site: site, Slot: slot}
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page wraps content in the layout data. path is the request path used for
// the canonical link.
func (r *Renderer) Page(title, description, path string, content any) Page {
	fullTitle := r.site.Name
	if title != "" {
		fullTitle = title + " | " + r.site.Name
	}
	return Page{
		Site:        r.site,
		Title:       fullTitle,
		Description: description,
		Canonical:   strings.TrimRight(r.site.BaseURL, "/") + path,
		Nav:         r.nav,
		Footer:      r.footer,
		Content:     content,
	}
}

// Execute renders a full page into w. Output is buffered so a template
// error never leaves a half-written page.
func (r *Renderer) Execute(w io.Writer, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Site returns the settings the renderer was built with.
func (r *Renderer) Site() Site {
	return r.site
}
