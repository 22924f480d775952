package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs search activity with hashed client identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogSearch records one search request
func (a *AuditLogger) LogSearch(
	query, client, backend string,
	resultCount int,
	executionTimeMs int64,
	errMsg string,
) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "search_audit").
		Str("query_hash", hashStr(query)[:16]).
		Int("query_length", len(query)).
		Str("client_hash", hashStr(client)[:16]).
		Str("backend", backend).
		Int("result_count", resultCount).
		Int64("execution_time_ms", executionTimeMs).
		Bool("success", errMsg == "")

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

// LogRejectedQuery records a query refused by QueryValidator
func (a *AuditLogger) LogRejectedQuery(query, client, reason string) {
	if !a.enabled {
		return
	}
	log.Warn().
		Str("event", "search_rejected").
		Str("query_hash", hashStr(query)[:16]).
		Str("client_hash", hashStr(client)[:16]).
		Str("reason", reason).
		Msg("audit")
}

// LogReindex records an admin reindex of the search backend
func (a *AuditLogger) LogReindex(apiKey, index string, indexed int, errMsg string) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "reindex_audit").
		Str("api_key_hash", hashStr(apiKey)[:16]).
		Str("index", index).
		Int("indexed", indexed).
		Bool("success", errMsg == "")
	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
