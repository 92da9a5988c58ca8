package sql

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

	// ErrEmptyStatement indicates the query is empty after normalization.
	ErrEmptyStatement = errors.New("empty SQL statement")
)

// ValidateSingleStatement checks that sqlQuery holds exactly one non-empty SQL
// statement. The trailing terminator is assumed to have been removed by
// Sanitize, so any remaining semicolon outside string literals indicates a
// second statement.
func ValidateSingleStatement(sqlQuery string) error {
	if strings.TrimSpace(sqlQuery) == "" {
		return ErrEmptyStatement
	}
	if hasSemicolonOutsideStrings(sqlQuery) {
		return ErrMultipleStatements
	}
	return nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBacktick
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			case '`':
				state = stateBacktick
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// For a doubled quote this exits and immediately re-enters on the
			// next quote, which correctly keeps us inside the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		case stateBacktick:
			if char == '`' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}
