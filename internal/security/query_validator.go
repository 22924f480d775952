package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxQueryLength = 100

var (
	ErrQueryTooLong  = errors.New("search query too long")
	ErrQueryRejected = errors.New("search query rejected")
)

// rejectedPatterns catch markup and injection probes in search input; the
// query is echoed back into pages and forwarded to the search backend.
var rejectedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`(?i)\bunion\s+select\b`),
	regexp.MustCompile(`(?i)/etc/passwd`),
}

// QueryValidator normalises and checks free-text search queries
type QueryValidator struct {
	maxLength int
}

func NewQueryValidator() *QueryValidator {
	return &QueryValidator{maxLength: MaxQueryLength}
}

// Normalize validates query and returns it trimmed with inner whitespace
// collapsed. A blank query is valid and normalises to "".
func (v *QueryValidator) Normalize(query string) (string, error) {
	if !utf8.ValidString(query) {
		return "", fmt.Errorf("%w: invalid utf-8", ErrQueryRejected)
	}
	if n := utf8.RuneCountInString(query); n > v.maxLength {
		return "", fmt.Errorf("%w: %d chars (max %d)", ErrQueryTooLong, n, v.maxLength)
	}
	for _, r := range query {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return "", fmt.Errorf("%w: control character %U", ErrQueryRejected, r)
		}
	}
	for _, pattern := range rejectedPatterns {
		if pattern.MatchString(query) {
			return "", fmt.Errorf("%w: pattern %s", ErrQueryRejected, pattern.String())
		}
	}
	return strings.Join(strings.Fields(query), " "), nil
}
