package bref

import (
	"fmt"
	"strings"
	"time"
)

// The reference site has no numeric game ids. Its canonical id is synthesized
// from the local calendar date and the home team abbreviation, joined by a
// literal zero: 202601100BOS is the BOS home game of 2026-01-10.
const (
	dateLayout  = "20060102"
	idSeparator = '0'
	minIDLen    = len(dateLayout) + 1 + 2
)

// Synthesize builds the composite id for a date and home abbreviation.
func Synthesize(date time.Time, homeAbbr string) (string, error) {
	homeAbbr = strings.ToUpper(strings.TrimSpace(homeAbbr))
	if homeAbbr == "" {
		return "", fmt.Errorf("home abbreviation is required")
	}
	if date.IsZero() {
		return "", fmt.Errorf("date is required")
	}

	return date.Format(dateLayout) + string(idSeparator) + homeAbbr, nil
}

// Parse splits a composite id back into its date and home abbreviation.
func Parse(id string) (time.Time, string, error) {
	id = strings.TrimSpace(id)
	if len(id) < minIDLen {
		return time.Time{}, "", fmt.Errorf("composite id %q is too short", id)
	}
	if id[len(dateLayout)] != idSeparator {
		return time.Time{}, "", fmt.Errorf("composite id %q is missing its separator", id)
	}

	date, err := time.Parse(dateLayout, id[:len(dateLayout)])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("composite id %q has invalid date: %w", id, err)
	}

	homeAbbr := strings.ToUpper(id[len(dateLayout)+1:])
	if homeAbbr == "" {
		return time.Time{}, "", fmt.Errorf("composite id %q has no home abbreviation", id)
	}

	return date, homeAbbr, nil
}
