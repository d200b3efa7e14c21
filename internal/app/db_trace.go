package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLen = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace so multi-line builder output
// reads as one line in span attributes, and caps very long statements.
func formatDBQueryForTrace(query string) string {
	normalized := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) > maxTracedQueryLen {
		return normalized[:maxTracedQueryLen] + "..."
	}

	return normalized
}
