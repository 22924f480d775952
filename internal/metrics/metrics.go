// Package metrics exposes Prometheus instrumentation for page renders,
// searches and the loaded catalog.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer        prometheus.Gatherer
	requestDuration *prometheus.HistogramVec
	notFound        *prometheus.CounterVec
	searches        *prometheus.CounterVec
	searchResults   *prometheus.HistogramVec
	catalogSize     *prometheus.GaugeVec
}

// New registers the site metrics on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the site metrics on registerer and serves them
// from gatherer.
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		gatherer: gatherer,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolsite_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route pattern",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"route", "method", "status"},
		),
		notFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolsite_not_found_total",
				Help: "Requests answered with the not-found page",
			},
			[]string{"kind"},
		),
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolsite_searches_total",
				Help: "Search requests by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		searchResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolsite_search_results",
				Help:    "Number of results returned per search",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"backend"},
		),
		catalogSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toolsite_catalog_entries",
				Help: "Entries in the loaded catalog",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveNotFound counts a not-found render; kind is "category", "tool",
// "color" or "route".
func (m *Metrics) ObserveNotFound(kind string) {
	m.notFound.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveSearch(backend string, results int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.searches.WithLabelValues(backend, outcome).Inc()
	if err == nil {
		m.searchResults.WithLabelValues(backend).Observe(float64(results))
	}
}

func (m *Metrics) SetCatalogSize(categories, tools, featured int) {
	m.catalogSize.WithLabelValues("categories").Set(float64(categories))
	m.catalogSize.WithLabelValues("tools").Set(float64(tools))
	m.catalogSize.WithLabelValues("featured").Set(float64(featured))
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
