// Package sql provides sanitization and validation utilities for
// LLM-generated SQL text.
package sql

import "strings"

// Sanitize strips markdown artifacts and a trailing statement terminator from
// LLM-produced SQL text.
//
// Handles:
//   - ```sql ... ``` code blocks
//   - ``` ... ``` generic code blocks
//   - stray leading/trailing backticks
//   - a trailing semicolon
//   - surrounding whitespace
//
// Sanitize never fails; empty input yields empty output. Callers must treat
// an empty result as a generation failure, not attempt execution.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		// Drop the opening fence line (```sql or ```)
		lines = lines[1:]
		// Drop the closing fence if it is the last non-empty line
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.Join(lines, "\n")
	}

	text = strings.Trim(text, "`")

	// Strip trailing terminators until stable so the result is idempotent
	// even for output like "SELECT 1; ;".
	text = strings.TrimSpace(text)
	for strings.HasSuffix(text, ";") {
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	}
	return text
}
