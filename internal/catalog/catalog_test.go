package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freetools/toolsite/internal/catalog"
)

func testSections() []catalog.Section {
	return []catalog.Section{
		{
			Category: catalog.Category{ID: "math", Name: "Math", Icon: "+"},
			Tools: []catalog.Tool{
				{ID: "percent", Title: "Percentage Calculator", Description: "Work out percentages", Featured: true},
				{ID: "average", Title: "Average Calculator", Description: "Mean and median"},
			},
		},
		{
			Category: catalog.Category{ID: "finance", Name: "Finance"},
		},
		{
			Category: catalog.Category{ID: "developer", Name: "Developer"},
			Tools: []catalog.Tool{
				{ID: "hex-to-rgb", Title: "HEX to RGB", Description: "Convert HEX colors", Featured: true},
				{ID: "json", Title: "JSON Formatter", Description: "Pretty-print JSON"},
			},
		},
	}
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(testSections())
	require.NoError(t, err)
	return c
}

// ─── Construction ─────────────────────────────────────────────────────────────

func TestNewAssignsCategoryAndURL(t *testing.T) {
	c := newTestCatalog(t)

	tools := c.ToolsByCategory("developer")
	require.Len(t, tools, 2)
	assert.Equal(t, "developer", tools[0].Category)
	assert.Equal(t, "/developer/hex-to-rgb", tools[0].URL)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]catalog.Section) []catalog.Section
	}{
		{"non-slug category", func(s []catalog.Section) []catalog.Section {
			s[0].ID = "Math Tools"
			return s
		}},
		{"duplicate category", func(s []catalog.Section) []catalog.Section {
			s[1].ID = "math"
			return s
		}},
		{"unnamed category", func(s []catalog.Section) []catalog.Section {
			s[0].Name = " "
			return s
		}},
		{"duplicate tool", func(s []catalog.Section) []catalog.Section {
			s[0].Tools[1].ID = "percent"
			return s
		}},
		{"foreign category", func(s []catalog.Section) []catalog.Section {
			s[0].Tools[0].Category = "developer"
			return s
		}},
		{"external url", func(s []catalog.Section) []catalog.Section {
			s[2].Tools[0].URL = "https://example.com/hex"
			return s
		}},
		{"untitled tool", func(s []catalog.Section) []catalog.Section {
			s[2].Tools[1].Title = ""
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.New(tt.mutate(testSections()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, catalog.ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	sections := testSections()
	c, err := catalog.New(sections)
	require.NoError(t, err)

	sections[0].Tools[0].Title = "changed"
	assert.Equal(t, "Percentage Calculator", c.ToolsByCategory("math")[0].Title)
}

// ─── Queries ──────────────────────────────────────────────────────────────────

func TestCategoryByID(t *testing.T) {
	c := newTestCatalog(t)

	for _, cat := range c.Categories() {
		got, ok := c.CategoryByID(cat.ID)
		require.True(t, ok, cat.ID)
		assert.Equal(t, cat.ID, got.ID)
	}

	for _, id := range []string{"", "nonexistent-category", "MATH", "math "} {
		_, ok := c.CategoryByID(id)
		assert.False(t, ok, "%q should not resolve", id)
	}
}

func TestToolsByCategory(t *testing.T) {
	c := newTestCatalog(t)
	all := c.AllTools()

	for _, cat := range c.Categories() {
		for _, tool := range c.ToolsByCategory(cat.ID) {
			assert.Equal(t, cat.ID, tool.Category)
			assert.Contains(t, all, tool)
		}
	}

	empty := c.ToolsByCategory("finance")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	unknown := c.ToolsByCategory("nonexistent-category")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestFeaturedToolsIsStableSubsequence(t *testing.T) {
	c := newTestCatalog(t)

	var want []catalog.Tool
	for _, tool := range c.AllTools() {
		if tool.Featured {
			want = append(want, tool)
		}
	}
	if diff := cmp.Diff(want, c.FeaturedTools()); diff != "" {
		t.Errorf("FeaturedTools() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"calculator", []string{"percent", "average"}},
		{"CALC", []string{"percent", "average"}},
		{"json", []string{"json"}},
		{"pretty", []string{"json"}},
		{"convert hex", []string{"hex-to-rgb"}},
		{"convert json", nil},
		{"   ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Search(tt.query)
			require.NotNil(t, got)
			var ids []string
			for _, tool := range got {
				ids = append(ids, tool.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQueriesAreIdempotentAndIsolated(t *testing.T) {
	c := newTestCatalog(t)

	first := c.FeaturedTools()
	first[0].Title = "mutated"
	assert.Empty(t, cmp.Diff(c.FeaturedTools(), c.FeaturedTools()))
	assert.NotEqual(t, "mutated", c.FeaturedTools()[0].Title)

	tools := c.ToolsByCategory("math")
	tools[0].Featured = false
	assert.True(t, c.ToolsByCategory("math")[0].Featured)

	assert.Equal(t, c.Search("calc"), c.Search("calc"))
}

func TestPosition(t *testing.T) {
	c := newTestCatalog(t)

	pos, ok := c.Position("developer", "json")
	require.True(t, ok)
	assert.Equal(t, 3, pos)

	_, ok = c.Position("finance", "json")
	assert.False(t, ok)
}

// ─── Loading ──────────────────────────────────────────────────────────────────

func TestDefaultCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	finance, ok := c.CategoryByID("finance")
	require.True(t, ok)
	assert.Equal(t, "Finance", finance.Name)
	assert.Empty(t, c.ToolsByCategory("finance"))

	for _, tool := range c.AllTools() {
		assert.Equal(t, catalog.ToolPath(tool.Category, tool.ID), tool.URL)
	}
	assert.NotEmpty(t, c.FeaturedTools())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := `
categories:
  - id: math
    name: Math
    colour: red
`
	_, err := catalog.Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadEmptyDocument(t *testing.T) {
	_, err := catalog.Load(strings.NewReader(""))
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
categories:
  - id: text
    name: Text
    tools:
      - id: word-counter
        title: Word Counter
        description: Count words
        featured: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ToolCount())
	assert.Equal(t, "/text/word-counter", c.FeaturedTools()[0].URL)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
