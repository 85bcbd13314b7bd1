package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"PLANNER_HTTP_PORT",
			"PLANNER_SQLITE_DSN",
			"PLANNER_SESSION_TTL",
			"PLANNER_SUGGEST_SEED",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("PLANNER_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:planner.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.SuggestSeed != nil {
			t.Fatalf("expected no default suggest seed, got %d", *cfg.SuggestSeed)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"PLANNER_SESSION_SECRET",
			"PLANNER_HTTP_PORT",
			"PLANNER_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: PLANNER_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("PLANNER_SESSION_SECRET", "secret-value")
		t.Setenv("PLANNER_HTTP_PORT", "9090")
		t.Setenv("PLANNER_SQLITE_DSN", "file:/tmp/planner.db")
		t.Setenv("PLANNER_SESSION_TTL", "12h")
		t.Setenv("PLANNER_SUGGEST_SEED", "42")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/planner.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SuggestSeed == nil || *cfg.SuggestSeed != 42 {
			t.Fatalf("expected suggest seed 42, got %v", cfg.SuggestSeed)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("PLANNER_SESSION_SECRET", "secret-value")
		t.Setenv("PLANNER_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed port")
		}
		expected := "environment variables have invalid values: PLANNER_HTTP_PORT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
