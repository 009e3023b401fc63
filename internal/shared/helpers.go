// Package shared provides common utility functions used across multiple
// packages in the extractor-installer codebase.
package shared

import (
	"fmt"
	"strings"
)

// ValidIdentifier reports whether value is a syntactically valid
// hosting-service identifier (owner or repository segment). The grammar
// is deliberately narrow because references can originate from
// untrusted pipeline configuration and later feed request and
// filesystem paths.
func ValidIdentifier(value string) bool {
	if value == "" || value == "." || value == ".." {
		return false
	}
	for _, ch := range value {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.':
		default:
			return false
		}
	}
	return true
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, strings.TrimSpace(body))
}

// NormalizeList splits a comma- or newline-separated configuration
// value into trimmed, non-empty entries.
func NormalizeList(value string) []string {
	fields := strings.FieldsFunc(value, func(ch rune) bool {
		return ch == ',' || ch == '\n' || ch == '\r'
	})
	var out []string
	for _, field := range fields {
		trimmed := strings.TrimSpace(field)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
