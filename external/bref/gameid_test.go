package bref

import (
	"testing"
	"time"
)

func TestSynthesize(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	id, err := Synthesize(date, "bos")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if id != "202601100BOS" {
		t.Fatalf("unexpected id %q", id)
	}

	if _, err := Synthesize(date, "  "); err == nil {
		t.Fatalf("expected error for empty abbreviation")
	}
	if _, err := Synthesize(time.Time{}, "BOS"); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	date, abbr, err := Parse("202601100BOS")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if abbr != "BOS" {
		t.Fatalf("unexpected abbreviation %q", abbr)
	}
	if date.Format("2006-01-02") != "2026-01-10" {
		t.Fatalf("unexpected date %s", date)
	}
}

func TestParse_RoundTrips(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	id, err := Synthesize(date, "GSW")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	gotDate, gotAbbr, err := Parse(id)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if gotAbbr != "GSW" || !gotDate.Equal(date) {
		t.Fatalf("round trip mismatch: %s %s", gotDate, gotAbbr)
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"too short":       "20260110",
		"wrong separator": "202601101BOS",
		"bad date":        "202613990BOS",
		"no abbreviation": "202601100",
	}
	for name, id := range cases {
		if _, _, err := Parse(id); err == nil {
			t.Fatalf("%s: expected error for %q", name, id)
		}
	}
}
