package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/metrics"
	"github.com/freetools/toolsite/internal/middleware"
	"github.com/freetools/toolsite/internal/service"
	"github.com/freetools/toolsite/internal/store/postgres"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg         *config.Config
	cat         *catalog.Catalog
	http        *http.Server
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter        // held so Close can stop its cleanup goroutine
	es          *service.ElasticsearchSearcher // nil with the memory backend
}

// New loads the catalog from the configured source and builds the server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	cat, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithCatalog(cfg, cat)
}

// NewWithCatalog builds the server around an already loaded catalog.
func NewWithCatalog(cfg *config.Config, cat *catalog.Catalog) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{cfg: cfg, cat: cat, metrics: metrics.New()}

	router, err := s.setupRoutes()
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// LoadCatalog reads the catalog from cfg.CatalogSource. A Postgres catalog
// is read once and the connection released.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.CatalogSource {
	case config.CatalogFile:
		return catalog.LoadFile(cfg.CatalogFile)
	case config.CatalogPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		cat, err := store.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog from postgres: %w", err)
		}
		return cat, nil
	default:
		return catalog.Default()
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Catalog returns the catalog the server was built with.
func (s *Server) Catalog() *catalog.Catalog {
	return s.cat
}

// Run serves until ctx is cancelled, then shuts down gracefully. With
// IndexOnStart the catalog is pushed to Elasticsearch alongside serving; an
// indexing failure is logged and search keeps falling back to memory.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	g, gctx := errgroup.WithContext(ctx)

	if s.es != nil && s.cfg.IndexOnStart {
		g.Go(func() error {
			start := time.Now()
			n, err := s.es.IndexCatalog(gctx)
			if err != nil {
				log.Warn().Err(err).Str("index", s.es.Index()).Msg("initial catalog indexing failed")
				return nil
			}
			log.Info().
				Str("index", s.es.Index()).
				Int("indexed", n).
				Dur("duration", time.Since(start)).
				Msg("catalog indexed")
			return nil
		})
	}

	g.Go(func() error {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.http.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases background resources. It is safe to call more than once.
func (s *Server) Close() error {
	if s.rateLimiter != nil {
		return s.rateLimiter.Close()
	}
	return nil
}
