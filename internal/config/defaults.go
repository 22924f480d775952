package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultSiteName = "Free Online Tools"
	DefaultBaseURL  = "http://localhost:8080"

	DefaultNotFoundSuggestions    = 6
	DefaultFooterLinksPerCategory = 4
	DefaultHomeFeaturedLimit      = 8

	DefaultSearchMaxResults = 20

	DefaultRateLimitPerMinute = 120

	DefaultElasticsearchURL        = "http://localhost:9200"
	DefaultElasticsearchIndex      = "toolsite-tools"
	DefaultElasticsearchMaxRetries = 3

	DefaultCORSMaxAge = 300
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
