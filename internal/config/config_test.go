package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.ReferenceTZ != "America/New_York" {
		t.Fatalf("unexpected ReferenceTZ: %q", cfg.ReferenceTZ)
	}
	if cfg.GameFinalGrace != 3*time.Hour {
		t.Fatalf("unexpected GameFinalGrace: %s", cfg.GameFinalGrace)
	}
	if cfg.SweepWorkers != 8 {
		t.Fatalf("unexpected SweepWorkers: %d", cfg.SweepWorkers)
	}
	if cfg.AuthoritativeSource != "nbastats" {
		t.Fatalf("unexpected AuthoritativeSource: %q", cfg.AuthoritativeSource)
	}
	if cfg.NBAStats.Enabled || cfg.BDL.Enabled {
		t.Fatalf("expected providers disabled by default")
	}
	if cfg.NBAStats.BaseURL != "https://stats.nba.com/stats" {
		t.Fatalf("unexpected NBAStats.BaseURL: %q", cfg.NBAStats.BaseURL)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BDLRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BDL_ENABLED", "true")
	t.Setenv("BDL_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BDL_ENABLED=true without BDL_TOKEN")
	}
}

func TestLoad_ProviderConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BDL_ENABLED", "true")
	t.Setenv("BDL_TOKEN", "token-123")
	t.Setenv("BDL_TIMEOUT", "7s")
	t.Setenv("BDL_MAX_RETRIES", "4")
	t.Setenv("BDL_CIRCUIT_FAILURE_COUNT", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BDL.Enabled {
		t.Fatalf("expected BDL.Enabled=true")
	}
	if cfg.BDL.Token != "token-123" {
		t.Fatalf("unexpected BDL.Token")
	}
	if cfg.BDL.Timeout != 7*time.Second {
		t.Fatalf("unexpected BDL.Timeout: %s", cfg.BDL.Timeout)
	}
	if cfg.BDL.MaxRetries != 4 {
		t.Fatalf("unexpected BDL.MaxRetries: %d", cfg.BDL.MaxRetries)
	}
	if cfg.BDL.CircuitFailureCount != 9 {
		t.Fatalf("unexpected BDL.CircuitFailureCount: %d", cfg.BDL.CircuitFailureCount)
	}
}

func TestLoad_RejectsBadReferenceTZ(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REFERENCE_TZ", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown REFERENCE_TZ")
	}
}

func TestLoad_RejectsNonPositiveGrace(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("GAME_FINAL_GRACE", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for GAME_FINAL_GRACE=0s")
	}
}
