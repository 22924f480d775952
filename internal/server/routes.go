package server

import (
	"fmt"
	"net/http"

	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/handler"
	"github.com/freetools/toolsite/internal/middleware"
	"github.com/freetools/toolsite/internal/models"
	"github.com/freetools/toolsite/internal/render"
	"github.com/freetools/toolsite/internal/security"
	"github.com/freetools/toolsite/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	cfg := s.cfg
	cat := s.cat

	// ─── Services ───────────────────────────────────────────────────────────────
	var searcher service.Searcher = service.NewMemorySearcher(cat)
	if cfg.SearchBackend == config.SearchElasticsearch {
		es, err := service.NewElasticsearchSearcher(service.ElasticsearchConfig{
			URL:        cfg.ElasticsearchURL,
			Username:   cfg.ElasticsearchUser,
			Password:   cfg.ElasticsearchPassword,
			Index:      cfg.ElasticsearchIndex,
			MaxRetries: cfg.ElasticsearchRetries,
		}, cat)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch searcher: %w", err)
		}
		s.es = es
		searcher = service.NewFallbackSearcher(es, searcher)
	}

	renderer, err := render.NewRenderer(cat, render.Site{
		Name:                   cfg.SiteName,
		BaseURL:                cfg.BaseURL,
		APIPrefix:              cfg.APIPrefix,
		AdsEnabled:             cfg.AdsEnabled,
		AdsClientID:            cfg.AdsClientID,
		NotFoundSuggestions:    cfg.NotFoundSuggestions,
		FooterLinksPerCategory: cfg.FooterLinksPerCategory,
		HomeFeaturedLimit:      cfg.HomeFeaturedLimit,
	})
	if err != nil {
		return nil, err
	}

	featured := len(cat.FeaturedTools())
	s.metrics.SetCatalogSize(cat.CategoryCount(), cat.ToolCount(), featured)

	log.Info().
		Str("catalog_source", cfg.CatalogSource).
		Int("categories", cat.CategoryCount()).
		Int("tools", cat.ToolCount()).
		Int("featured", featured).
		Str("search_backend", searcher.Name()).
		Bool("ads_enabled", cfg.AdsEnabled).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if len(cfg.APIKeys) == 0 {
		log.Warn().Msg("no API keys configured - admin endpoints will reject every request")
	}

	// ─── Security ───────────────────────────────────────────────────────────────
	validator := security.NewQueryValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Handlers ────────────────────────────────────────────────────────────────
	var esCheck handler.HealthChecker
	var indexer handler.Indexer
	if s.es != nil {
		esCheck = s.es
		indexer = s.es
	}

	healthH := handler.NewHealthHandler(models.CatalogStats{
		Source:     cfg.CatalogSource,
		Categories: cat.CategoryCount(),
		Tools:      cat.ToolCount(),
		Featured:   featured,
	}, esCheck)
	pagesH := handler.NewPageHandler(cat, renderer, s.metrics)
	searchH := handler.NewSearchHandler(cat, renderer, searcher, service.NewCategoryRouter(cat),
		validator, auditLogger, s.metrics, cfg.SearchMaxResults)
	catalogH := handler.NewCatalogHandler(cat)
	adminH := handler.NewAdminHandler(indexer, auditLogger, cfg.APIKeyHeader)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics(s.metrics))

	r.NotFound(pagesH.NotFound)

	// Public routes
	r.Get("/health", healthH.Health)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", s.metrics.Handler())
	}

	// Pages. /developer/{color} is static-prefixed, so chi prefers it over
	// /{category}/{tool}; the color handler serves other developer tools too.
	r.Get("/", pagesH.Home)
	r.Get("/all-tools", pagesH.AllTools)
	r.Get("/search", searchH.Page)
	r.Get("/developer/{color}", pagesH.Color)
	r.Get("/{category}", pagesH.Category)
	r.Get("/{category}/{tool}", pagesH.Tool)

	// CORS + rate limiting for API routes
	s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
		corsCfg.MaxAge = cfg.CORSMaxAge
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.RateLimit(s.rateLimiter))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			models.WriteError(w, http.StatusNotFound, "not found")
		})

		r.Get("/search", searchH.API)
		r.Get("/categories", catalogH.Categories)
		r.Get("/categories/{id}/tools", catalogH.CategoryTools)
		r.Get("/featured", catalogH.Featured)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
			r.Post("/admin/reindex", adminH.Reindex)
		})
	})

	return r, nil
}
