package service

import (
	"context"
	"time"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/rs/zerolog/log"
)

// Searcher finds tools matching a free-text query. Results are in catalog
// order; limit <= 0 means no limit.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Tool, error)
	Name() string
}

// MemorySearcher filters the in-memory catalog directly
type MemorySearcher struct {
	cat *catalog.Catalog
}

func NewMemorySearcher(cat *catalog.Catalog) *MemorySearcher {
	return &MemorySearcher{cat: cat}
}

func (m *MemorySearcher) Name() string { return "memory" }

func (m *MemorySearcher) Search(ctx context.Context, query string, limit int) ([]catalog.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return truncate(m.cat.Search(query), limit), nil
}

// FallbackSearcher answers from primary and switches to fallback for a
// single request whenever primary fails.
type FallbackSearcher struct {
	primary  Searcher
	fallback Searcher
}

func NewFallbackSearcher(primary, fallback Searcher) *FallbackSearcher {
	return &FallbackSearcher{primary: primary, fallback: fallback}
}

func (f *FallbackSearcher) Name() string { return f.primary.Name() }

// Primary returns the preferred backend.
func (f *FallbackSearcher) Primary() Searcher { return f.primary }

func (f *FallbackSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.Tool, error) {
	start := time.Now()
	tools, err := f.primary.Search(ctx, query, limit)
	if err == nil {
		return tools, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("backend", f.primary.Name()).
		Str("fallback", f.fallback.Name()).
		Dur("duration", time.Since(start)).
		Msg("search backend failed, falling back")
	return f.fallback.Search(ctx, query, limit)
}

func truncate(tools []catalog.Tool, limit int) []catalog.Tool {
	if limit > 0 && len(tools) > limit {
		return tools[:limit]
	}
	return tools
}
