package player_test

import (
	"testing"

	"github.com/courtline/courtline/internal/domain/player"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"LeBron James":     "lebron james",
		"  LeBron  James ": "lebron james",
		"NIKOLA JOKIC":     "nikola jokic",
		"":                 "",
	}

	for input, want := range cases {
		if got := player.NormalizeName(input); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFoldName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Luka Dončić":      "luka doncic",
		"Nikola Jokić":     "nikola jokic",
		"Bojan Bogdanović": "bojan bogdanovic",
		"LeBron James":     "lebron james",
	}

	for input, want := range cases {
		if got := player.FoldName(input); got != want {
			t.Fatalf("FoldName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFoldNameIdempotent(t *testing.T) {
	t.Parallel()

	once := player.FoldName("Dario Šarić")
	twice := player.FoldName(once)
	if once != twice {
		t.Fatalf("folding is not idempotent: %q then %q", once, twice)
	}
}
