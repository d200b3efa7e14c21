package game_test

import (
	"testing"
	"time"

	"github.com/courtline/courtline/internal/domain/game"
)

func intPtr(v int) *int { return &v }

func TestParseStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Final":       game.StatusFinal,
		"final/ot":    game.StatusFinal,
		"F/OT":        game.StatusFinal,
		"3":           game.StatusFinal,
		"Scheduled":   game.StatusScheduled,
		"pregame":     game.StatusScheduled,
		"In Progress": game.StatusInProgress,
		"LIVE":        game.StatusInProgress,
		"PPD":         game.StatusPostponed,
		"canceled":    game.StatusCancelled,
	}

	for input, want := range cases {
		got, ok := game.ParseStatus(input)
		if !ok {
			t.Fatalf("ParseStatus(%q) not recognized", input)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", input, got, want)
		}
	}

	for _, input := range []string{"", "garbage", "Q5", "FINALE"} {
		if _, ok := game.ParseStatus(input); ok {
			t.Fatalf("ParseStatus(%q) unexpectedly recognized", input)
		}
	}
}

func TestWinner(t *testing.T) {
	t.Parallel()

	base := game.Game{
		ID:         1,
		StartTime:  time.Now(),
		HomeTeamID: 4,
		AwayTeamID: 9,
	}

	t.Run("home win", func(t *testing.T) {
		t.Parallel()

		g := base
		g.Status = game.StatusFinal
		g.HomeScore, g.AwayScore = intPtr(110), intPtr(101)
		if got := g.Winner(); got != 4 {
			t.Fatalf("Winner() = %d, want 4", got)
		}
	})

	t.Run("away win", func(t *testing.T) {
		t.Parallel()

		g := base
		g.Status = game.StatusFinal
		g.HomeScore, g.AwayScore = intPtr(99), intPtr(101)
		if got := g.Winner(); got != 9 {
			t.Fatalf("Winner() = %d, want 9", got)
		}
	})

	t.Run("equal scores credit neither", func(t *testing.T) {
		t.Parallel()

		g := base
		g.Status = game.StatusFinal
		g.HomeScore, g.AwayScore = intPtr(100), intPtr(100)
		if got := g.Winner(); got != 0 {
			t.Fatalf("Winner() = %d, want 0", got)
		}
	})

	t.Run("not final", func(t *testing.T) {
		t.Parallel()

		g := base
		g.Status = game.StatusInProgress
		g.HomeScore, g.AwayScore = intPtr(55), intPtr(48)
		if got := g.Winner(); got != 0 {
			t.Fatalf("Winner() = %d, want 0", got)
		}
	})
}

func TestIsTerminalStatus(t *testing.T) {
	t.Parallel()

	terminal := []string{game.StatusFinal, game.StatusPostponed, game.StatusCancelled}
	for _, s := range terminal {
		if !game.IsTerminalStatus(s) {
			t.Fatalf("expected %q to be terminal", s)
		}
	}
	for _, s := range []string{game.StatusScheduled, game.StatusInProgress, "bogus"} {
		if game.IsTerminalStatus(s) {
			t.Fatalf("expected %q to be non-terminal", s)
		}
	}
}
