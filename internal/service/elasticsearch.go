package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/freetools/toolsite/internal/catalog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds the parallel bulk requests sent by IndexCatalog.
const bulkConcurrency = 4

// ElasticsearchConfig holds connection settings for ElasticsearchSearcher
type ElasticsearchConfig struct {
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
	Transport  http.RoundTripper
}

// ElasticsearchSearcher mirrors the catalog into an Elasticsearch index and
// searches it there. Hits are mapped back onto the catalog, so results keep
// catalog order and stale documents are ignored.
type ElasticsearchSearcher struct {
	client *elasticsearch.Client
	index  string
	cat    *catalog.Catalog
}

// toolDocument is the indexed form of a catalog.Tool
type toolDocument struct {
	Category    string `json:"category"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Featured    bool   `json:"featured"`
	Position    int    `json:"position"`
}

var indexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"category":    map[string]interface{}{"type": "keyword"},
			"id":          map[string]interface{}{"type": "keyword"},
			"title":       textWithRaw(),
			"description": textWithRaw(),
			"url":         map[string]interface{}{"type": "keyword"},
			"featured":    map[string]interface{}{"type": "boolean"},
			"position":    map[string]interface{}{"type": "integer"},
		},
	},
}

func textWithRaw() map[string]interface{} {
	return map[string]interface{}{
		"type": "text",
		"fields": map[string]interface{}{
			"raw": map[string]interface{}{"type": "keyword", "ignore_above": 1024},
		},
	}
}

// NewElasticsearchSearcher creates an ES client using go-elasticsearch/v8
func NewElasticsearchSearcher(cfg ElasticsearchConfig, cat *catalog.Catalog) (*ElasticsearchSearcher, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("elasticsearch index name is required")
	}

	esCfg := elasticsearch.Config{
		Addresses:  []string{cfg.URL},
		MaxRetries: cfg.MaxRetries,
		Transport:  cfg.Transport,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	return &ElasticsearchSearcher{
		client: client,
		index:  cfg.Index,
		cat:    cat,
	}, nil
}

func (s *ElasticsearchSearcher) Name() string { return "elasticsearch" }

// Index returns the name of the backing index
func (s *ElasticsearchSearcher) Index() string { return s.index }

// TestConnection pings the cluster
func (s *ElasticsearchSearcher) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// IndexCatalog drops and recreates the index, then bulk-loads every tool,
// one bulk request per category. It returns the number of documents
// indexed.
func (s *ElasticsearchSearcher) IndexCatalog(ctx context.Context) (int, error) {
	if err := s.recreateIndex(ctx); err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)

	position := 0
	total := 0
	for _, cat := range s.cat.Categories() {
		tools := s.cat.ToolsByCategory(cat.ID)
		if len(tools) == 0 {
			continue
		}

		var buf bytes.Buffer
		for _, t := range tools {
			meta := map[string]interface{}{"index": map[string]interface{}{"_id": documentID(t)}}
			doc := toolDocument{
				Category:    t.Category,
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				URL:         t.URL,
				Featured:    t.Featured,
				Position:    position,
			}
			position++
			if err := writeNDJSON(&buf, meta, doc); err != nil {
				return 0, fmt.Errorf("encode %s: %w", documentID(t), err)
			}
		}
		total += len(tools)

		categoryID := cat.ID
		body := buf.Bytes()
		g.Go(func() error {
			if err := s.bulk(gctx, body); err != nil {
				return fmt.Errorf("bulk index category %q: %w", categoryID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Info().
		Str("index", s.index).
		Int("documents", total).
		Msg("catalog indexed")
	return total, nil
}

// Search matches every query term as a case-insensitive substring of the
// title or description, the same rule as catalog.Catalog.Search.
func (s *ElasticsearchSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.Tool, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []catalog.Tool{}, nil
	}

	size := limit
	if size <= 0 {
		size = s.cat.ToolCount()
	}

	must := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		pattern := "*" + escapeWildcard(term) + "*"
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					wildcard("title.raw", pattern),
					wildcard("description.raw", pattern),
				},
				"minimum_should_match": 1,
			},
		})
	}

	body := map[string]interface{}{
		"size":    size,
		"_source": []string{"category", "id"},
		"sort":    []interface{}{map[string]interface{}{"position": "asc"}},
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	}

	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError(res)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source toolDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	type ranked struct {
		tool catalog.Tool
		pos  int
	}
	hits := make([]ranked, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		t, ok := s.cat.Tool(h.Source.Category, h.Source.ID)
		if !ok {
			continue
		}
		pos, _ := s.cat.Position(t.Category, t.ID)
		hits = append(hits, ranked{tool: t, pos: pos})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	tools := make([]catalog.Tool, len(hits))
	for i, h := range hits {
		tools[i] = h.tool
	}
	return truncate(tools, limit), nil
}

func (s *ElasticsearchSearcher) recreateIndex(ctx context.Context) error {
	res, err := s.client.Indices.Delete(
		[]string{s.index},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete index: %s", res.Status())
	}

	mapping, err := json.Marshal(indexMapping)
	if err != nil {
		return err
	}
	res, err = s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %w", responseError(res))
	}
	return nil
}

func (s *ElasticsearchSearcher) bulk(ctx context.Context, body []byte) error {
	res, err := s.client.Bulk(
		bytes.NewReader(body),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.index),
		s.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string                 `json:"_id"`
			Error map[string]interface{} `json:"error,omitempty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return nil
	}
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Error != nil {
				return fmt.Errorf("document %s: %v", op.ID, op.Error["reason"])
			}
		}
	}
	return fmt.Errorf("bulk request reported errors")
}

func documentID(t catalog.Tool) string {
	return t.Category + ":" + t.ID
}

func wildcard(field, pattern string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            pattern,
				"case_insensitive": true,
			},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(term string) string {
	return wildcardEscaper.Replace(term)
}

func writeNDJSON(w io.Writer, lines ...interface{}) error {
	enc := json.NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func responseError(res *esapi.Response) error {
	raw, err := decodeBody(res.Body, res.Status())
	if err != nil {
		return err
	}
	return fmt.Errorf("elasticsearch error: %s %v", res.Status(), raw)
}

func decodeBody(r io.Reader, status string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response [%s]: %w", status, err)
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if errObj, ok := result["error"]; ok {
			return nil, fmt.Errorf("elasticsearch error [%s]: %v", status, errObj)
		}
		return nil, fmt.Errorf("elasticsearch error: %s", status)
	}
	return result, nil
}
