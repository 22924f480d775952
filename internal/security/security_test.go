package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/freetools/toolsite/internal/security"
)

// ─── QueryValidator ───────────────────────────────────────────────────────────

func TestQueryValidatorNormalize(t *testing.T) {
	v := security.NewQueryValidator()

	tests := []struct {
		query string
		want  string
	}{
		{"hex to rgb", "hex to rgb"},
		{"  bmi   calculator \t", "bmi calculator"},
		{"", ""},
		{"   ", ""},
		{"Größe umrechnen", "Größe umrechnen"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := v.Normalize(tt.query)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestQueryValidatorRejects(t *testing.T) {
	v := security.NewQueryValidator()

	rejected := []string{
		"<script>alert(1)</script>",
		"javascript:alert(1)",
		"img onerror=alert(1)",
		"../../etc",
		"1 UNION SELECT password",
		"tab\x00null",
	}
	for _, q := range rejected {
		if _, err := v.Normalize(q); !errors.Is(err, security.ErrQueryRejected) {
			t.Errorf("Normalize(%q): expected ErrQueryRejected, got %v", q, err)
		}
	}

	long := strings.Repeat("a", security.MaxQueryLength+1)
	if _, err := v.Normalize(long); !errors.Is(err, security.ErrQueryTooLong) {
		t.Errorf("expected ErrQueryTooLong, got %v", err)
	}
}

// ─── AuditLogger ──────────────────────────────────────────────────────────────

func TestAuditLoggerDisabledIsNoop(t *testing.T) {
	a := security.NewAuditLogger(false)
	// Must not panic on short inputs either.
	a.LogSearch("", "", "memory", 0, 0, "")
	a.LogRejectedQuery("", "", "")
	a.LogReindex("", "idx", 0, "")
}

func TestAuditLoggerEnabled(t *testing.T) {
	a := security.NewAuditLogger(true)
	a.LogSearch("hex", "10.0.0.1", "memory", 2, 1, "")
	a.LogSearch("hex", "10.0.0.1", "elasticsearch", 0, 3, "timeout")
	a.LogRejectedQuery("<script>", "10.0.0.1", "pattern")
	a.LogReindex("key", "toolsite-tools", 30, "")
}
