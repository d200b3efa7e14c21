package bref

import (
	"testing"
)

func TestBuildObservation(t *testing.T) {
	t.Parallel()

	rows := []BoxScoreRow{
		{PlayerName: "Jayson Tatum", TeamAbbr: "BOS", Minutes: "36:24", Started: true, Points: 30},
		{PlayerName: "Jalen Brunson", TeamAbbr: "nyk", Minutes: "38:02", Started: true, Points: 28},
		{PlayerName: "Payton Pritchard", TeamAbbr: "BOS", Reason: "Did Not Play"},
	}

	obs, err := BuildObservation("202601100BOS", 2025, rows)
	if err != nil {
		t.Fatalf("BuildObservation: %v", err)
	}

	if obs.ProviderGameID != "202601100BOS" {
		t.Fatalf("unexpected provider game id %q", obs.ProviderGameID)
	}
	if obs.Game.HomeAbbr != "BOS" || obs.Game.AwayAbbr != "NYK" {
		t.Fatalf("unexpected candidate pair %s/%s", obs.Game.HomeAbbr, obs.Game.AwayAbbr)
	}
	if obs.Game.StartTime.Format("2006-01-02") != "2026-01-10" {
		t.Fatalf("unexpected candidate date %s", obs.Game.StartTime)
	}
	if len(obs.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(obs.Lines))
	}

	starter := obs.Lines[0]
	if starter.StartPosition == "" {
		t.Fatalf("expected starter marker for started row")
	}
	if starter.Minutes != "36:24" || starter.Points != 30 {
		t.Fatalf("unexpected starter mapping %+v", starter)
	}

	dnp := obs.Lines[2]
	if dnp.StartPosition != "" {
		t.Fatalf("expected empty start position for bench row")
	}
	if dnp.Comment != "Did Not Play" || dnp.Minutes != "" {
		t.Fatalf("unexpected dnp mapping %+v", dnp)
	}
}

func TestBuildObservation_Rejects(t *testing.T) {
	t.Parallel()

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()
		if _, err := BuildObservation("202601100BOS", 2025, nil); err == nil {
			t.Fatalf("expected error for empty rows")
		}
	})

	t.Run("home rows only", func(t *testing.T) {
		t.Parallel()
		rows := []BoxScoreRow{{PlayerName: "Jayson Tatum", TeamAbbr: "BOS"}}
		if _, err := BuildObservation("202601100BOS", 2025, rows); err == nil {
			t.Fatalf("expected error without an away side")
		}
	})

	t.Run("three teams", func(t *testing.T) {
		t.Parallel()
		rows := []BoxScoreRow{
			{PlayerName: "A", TeamAbbr: "BOS"},
			{PlayerName: "B", TeamAbbr: "NYK"},
			{PlayerName: "C", TeamAbbr: "MIL"},
		}
		if _, err := BuildObservation("202601100BOS", 2025, rows); err == nil {
			t.Fatalf("expected error for mixed away sides")
		}
	})

	t.Run("bad id", func(t *testing.T) {
		t.Parallel()
		rows := []BoxScoreRow{{PlayerName: "A", TeamAbbr: "BOS"}, {PlayerName: "B", TeamAbbr: "NYK"}}
		if _, err := BuildObservation("not-an-id", 2025, rows); err == nil {
			t.Fatalf("expected error for malformed id")
		}
	})
}
