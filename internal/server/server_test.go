package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/models"
	"github.com/freetools/toolsite/internal/server"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T, mutate func(cfg *config.Config)) *server.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.EnableAuditLogging = false
	cfg.APIKeys = []string{"test-key"}
	if mutate != nil {
		mutate(cfg)
	}
	s, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func serve(s *server.Server, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.7:4321"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

// ─── Pages ────────────────────────────────────────────────────────────────────

func TestPages(t *testing.T) {
	s := newServer(t, nil)
	cases := []struct {
		target string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Popular tools"},
		{"/all-tools", http.StatusOK, "All tools"},
		{"/math", http.StatusOK, "Percentage Calculator"},
		{"/finance", http.StatusOK, "Coming soon"},
		{"/nonexistent-category", http.StatusNotFound, "Page not found"},
		{"/developer/hex-to-rgb", http.StatusOK, "rgb(30, 144, 255)"},
		{"/developer/uuid-generator", http.StatusOK, "UUID Generator"},
		{"/health-and-fitness/bmi", http.StatusNotFound, "Page not found"},
		{"/search?q=converter", http.StatusOK, "Length Converter"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rr := serve(s, http.MethodGet, tc.target, nil)
			assert.Equal(t, tc.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
			assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestPagesAreNotRateLimited(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 1 })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/", nil).Code)
	}
}

func TestSearchBoxUsesAPIPrefix(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.APIPrefix = "/api/v2" })

	rr := serve(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-api="/api/v2/search"`)
	assert.NotContains(t, rr.Body.String(), "/api/v1/search")

	rr = serve(s, http.MethodGet, "/api/v2/search?q=hex", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

// ─── API ──────────────────────────────────────────────────────────────────────

func TestCategoriesAPI(t *testing.T) {
	s := newServer(t, nil)
	rr := serve(s, http.MethodGet, "/api/v1/categories", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, strconv.Itoa(config.DefaultCORSMaxAge), rr.Header().Get("Access-Control-Max-Age"))

	var resp models.CategoriesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, s.Catalog().CategoryCount(), resp.Count)
}

func TestCORSMaxAgeFromConfig(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.CORSMaxAge = 600 })
	rr := serve(s, http.MethodOptions, "/api/v1/search", map[string]string{"Origin": "http://localhost:8080"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	s := newServer(t, nil)
	rr := serve(s, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestAPIRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 2 })
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/featured", nil).Code)
	}
	rr := serve(s, http.MethodGet, "/api/v1/featured", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
}

func TestReindexRequiresKey(t *testing.T) {
	s := newServer(t, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(s, http.MethodPost, "/api/v1/admin/reindex", nil).Code)
	assert.Equal(t, http.StatusForbidden,
		serve(s, http.MethodPost, "/api/v1/admin/reindex", map[string]string{"X-API-Key": "wrong"}).Code)

	// Authorised, but the memory backend has nothing to index.
	assert.Equal(t, http.StatusConflict,
		serve(s, http.MethodPost, "/api/v1/admin/reindex", map[string]string{"X-API-Key": "test-key"}).Code)
}

// ─── Observability ────────────────────────────────────────────────────────────

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, nil)
	serve(s, http.MethodGet, "/nonexistent-category", nil)

	rr := serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `toolsite_catalog_entries{kind="tools"} 28`)
	assert.Contains(t, body, `toolsite_not_found_total{kind="category"} 1`)
	assert.Contains(t, body, `route="/{category}"`)
}

func TestMetricsDisabled(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.MetricsEnabled = false })
	rr := serve(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	rr := serve(s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "embedded", resp.Catalog.Source)
	assert.Equal(t, 28, resp.Catalog.Tools)
	assert.Equal(t, "disabled", resp.Checks["elasticsearch"])
}

// ─── Backends ─────────────────────────────────────────────────────────────────

func TestElasticsearchFallback(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.SearchBackend = config.SearchElasticsearch
		cfg.ElasticsearchURL = "http://127.0.0.1:1"
		cfg.ElasticsearchRetries = 1
	})

	rr := serve(s, http.MethodGet, "/api/v1/search?q=json", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "elasticsearch", resp.Backend)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "json-formatter", resp.Results[0].ID)

	rr = serve(s, http.MethodGet, "/health", nil)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
}

const fileCatalog = `
categories:
  - id: tools
    name: Tools
    description: Small utilities.
    tools:
      - id: stopwatch
        title: Stopwatch
        description: Time anything.
        featured: true
`

func TestFileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fileCatalog), 0o600))

	s := newServer(t, func(cfg *config.Config) {
		cfg.CatalogSource = config.CatalogFile
		cfg.CatalogFile = path
	})
	assert.Equal(t, 1, s.Catalog().ToolCount())

	rr := serve(s, http.MethodGet, "/tools/stopwatch", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/math", nil).Code)
}

func TestLoadCatalogErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: Not A Slug\n    name: x\n"), 0o600))

	cfg := config.Default()
	cfg.CatalogSource = config.CatalogFile
	cfg.CatalogFile = path
	_, err := server.LoadCatalog(context.Background(), cfg)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = server.New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRejectsZeroRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimitPerMinute = 0
	_, err := server.NewWithCatalog(cfg, catalog.MustDefault())
	assert.ErrorContains(t, err, "rate_limit_per_minute")
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	s, err := server.New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	s, err := server.New(context.Background(), cfg)
	require.NoError(t, err)

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "listen"))
}
