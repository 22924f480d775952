package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Catalog sources
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// Search backends
const (
	SearchMemory        = "memory"
	SearchElasticsearch = "elasticsearch"
)

type Config struct {
	// Server
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"`
	APIPrefix   string `json:"api_prefix" yaml:"api_prefix"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// Site
	SiteName               string `json:"site_name" yaml:"site_name"`
	BaseURL                string `json:"base_url" yaml:"base_url"`
	NotFoundSuggestions    int    `json:"not_found_suggestions" yaml:"not_found_suggestions"`
	FooterLinksPerCategory int    `json:"footer_links_per_category" yaml:"footer_links_per_category"`
	HomeFeaturedLimit      int    `json:"home_featured_limit" yaml:"home_featured_limit"`

	// Ads
	AdsEnabled  bool   `json:"ads_enabled" yaml:"ads_enabled"`
	AdsClientID string `json:"ads_client_id" yaml:"ads_client_id"`

	// Catalog
	CatalogSource string `json:"catalog_source" yaml:"catalog_source"`
	CatalogFile   string `json:"catalog_file" yaml:"catalog_file"`
	PostgresDSN   string `json:"postgres_dsn" yaml:"postgres_dsn"`

	// Search
	SearchBackend         string `json:"search_backend" yaml:"search_backend"`
	SearchMaxResults      int    `json:"search_max_results" yaml:"search_max_results"`
	ElasticsearchURL      string `json:"elasticsearch_url" yaml:"elasticsearch_url"`
	ElasticsearchUser     string `json:"elasticsearch_user" yaml:"elasticsearch_user"`
	ElasticsearchPassword string `json:"elasticsearch_password" yaml:"elasticsearch_password"`
	ElasticsearchIndex    string `json:"elasticsearch_index" yaml:"elasticsearch_index"`
	ElasticsearchRetries  int    `json:"elasticsearch_max_retries" yaml:"elasticsearch_max_retries"`
	IndexOnStart          bool   `json:"index_on_start" yaml:"index_on_start"`

	// CORS
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	CORSMaxAge  int      `json:"cors_max_age" yaml:"cors_max_age"`

	// Admin auth
	APIKeyHeader string   `json:"api_key_header" yaml:"api_key_header"`
	APIKeys      []string `json:"api_keys" yaml:"api_keys"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// Observability
	MetricsEnabled     bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	EnableAuditLogging bool `json:"enable_audit_logging" yaml:"enable_audit_logging"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Host:                   DefaultHost,
		Port:                   DefaultPort,
		Environment:            DefaultEnvironment,
		APIPrefix:              DefaultAPIPrefix,
		LogLevel:               DefaultLogLevel,
		SiteName:               DefaultSiteName,
		BaseURL:                DefaultBaseURL,
		NotFoundSuggestions:    DefaultNotFoundSuggestions,
		FooterLinksPerCategory: DefaultFooterLinksPerCategory,
		HomeFeaturedLimit:      DefaultHomeFeaturedLimit,
		CatalogSource:          CatalogEmbedded,
		SearchBackend:          SearchMemory,
		SearchMaxResults:       DefaultSearchMaxResults,
		ElasticsearchURL:       DefaultElasticsearchURL,
		ElasticsearchIndex:     DefaultElasticsearchIndex,
		ElasticsearchRetries:   DefaultElasticsearchMaxRetries,
		CORSOrigins:            slices.Clone(DefaultCORSOrigins),
		CORSMaxAge:             DefaultCORSMaxAge,
		APIKeyHeader:           "X-API-Key",
		RateLimitPerMinute:     DefaultRateLimitPerMinute,
		MetricsEnabled:         true,
		EnableAuditLogging:     true,
	}
}

// Load builds the configuration from defaults, an optional config file named
// by TOOLSITE_CONFIG (JSON, or YAML for .yaml/.yml), and environment
// overrides, in that order.
func Load() (*Config, error) {
	return LoadFile(getEnv("TOOLSITE_CONFIG", ""))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers the config file and environment over the defaults without
// validating, for callers that apply further overrides first.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks enumerated fields and numeric ranges.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("catalog_source %q requires catalog_file", c.CatalogSource)
		}
	case CatalogPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("catalog_source %q requires postgres_dsn", c.CatalogSource)
		}
	default:
		return fmt.Errorf("unknown catalog_source %q", c.CatalogSource)
	}
	switch c.SearchBackend {
	case SearchMemory, SearchElasticsearch:
	default:
		return fmt.Errorf("unknown search_backend %q", c.SearchBackend)
	}
	if c.NotFoundSuggestions < 0 || c.FooterLinksPerCategory < 0 || c.HomeFeaturedLimit < 0 {
		return fmt.Errorf("page limits must not be negative")
	}
	if c.SearchMaxResults <= 0 {
		return fmt.Errorf("search_max_results must be positive")
	}
	if c.CORSMaxAge < 0 {
		return fmt.Errorf("cors_max_age must not be negative")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate_limit_per_minute must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == DefaultEnvironment
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("TOOLSITE_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("TOOLSITE_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		} else {
			log.Warn().Str("TOOLSITE_PORT", v).Msg("ignoring non-numeric port override")
		}
	}
	if v := getEnv("TOOLSITE_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("TOOLSITE_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("TOOLSITE_BASE_URL", ""); v != "" {
		cfg.BaseURL = v
	}
	if v := getEnv("TOOLSITE_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("TOOLSITE_CATALOG_SOURCE", ""); v != "" {
		cfg.CatalogSource = v
	}
	if v := getEnv("TOOLSITE_CATALOG_FILE", ""); v != "" {
		cfg.CatalogFile = v
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getEnv("TOOLSITE_SEARCH_BACKEND", ""); v != "" {
		cfg.SearchBackend = v
	}
	if v := getEnv("ELASTICSEARCH_URL", ""); v != "" {
		cfg.ElasticsearchURL = v
	}
	if v := getEnv("ELASTICSEARCH_USER", ""); v != "" {
		cfg.ElasticsearchUser = v
	}
	if v := getEnv("ELASTICSEARCH_PASSWORD", ""); v != "" {
		cfg.ElasticsearchPassword = v
	}
	if v := getEnv("ELASTICSEARCH_INDEX", ""); v != "" {
		cfg.ElasticsearchIndex = v
	}
	if v := getEnv("TOOLSITE_ADS_ENABLED", ""); v != "" {
		cfg.AdsEnabled = v == "true" || v == "1"
	}
	if v := getEnv("TOOLSITE_ADS_CLIENT_ID", ""); v != "" {
		cfg.AdsClientID = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		} else {
			log.Warn().Str("RATE_LIMIT_PER_MINUTE", v).Msg("ignoring non-numeric rate limit override")
		}
	}
	if v := getEnv("TOOLSITE_METRICS_ENABLED", ""); v != "" {
		cfg.MetricsEnabled = v == "true" || v == "1"
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
