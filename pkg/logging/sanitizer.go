// Package logging provides helpers for keeping credentials and oversized SQL
// out of log output.
package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a SQL statement to log.
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx (until the next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// api_key=xxx and variants
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// user:pass@tcp(host:port) — go-sql-driver DSN credentials, which MySQL
	// driver errors sometimes echo back
	dsnPattern = regexp.MustCompile(`[^:\s/]+:[^@\s]+@tcp\([^)]+\)`)

	// OpenAI bearer tokens
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_.]+`)
)

// SanitizeError strips credentials from an error message before logging.
// Driver and model client errors can carry the DSN or an Authorization
// header verbatim.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = dsnPattern.ReplaceAllString(sanitized, RedactedText+"@tcp("+RedactedText+")")
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	return sanitized
}

// SanitizeQuery truncates a SQL statement for logging. Generated segment SQL
// can run to several kilobytes; a prefix is enough to identify it.
func SanitizeQuery(query string) string {
	if len(query) > MaxQueryLogLength {
		return query[:MaxQueryLogLength] + "..."
	}
	return query
}
