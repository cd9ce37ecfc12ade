package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServerFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8090" {
		t.Errorf("addr = %q, want :8090", cfg.Addr)
	}
	if cfg.TickEvery != time.Second {
		t.Errorf("tick every = %v, want 1s", cfg.TickEvery)
	}
	if cfg.MinTickInterval != 1500*time.Millisecond {
		t.Errorf("min tick interval = %v, want 1.5s", cfg.MinTickInterval)
	}
	if cfg.GameHourEvery != 2*time.Second {
		t.Errorf("game hour every = %v, want 2s", cfg.GameHourEvery)
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SIMARKET_TICK_EVERY", "250ms")
	t.Setenv("SIMARKET_RANDOM_SEED", "1234")
	t.Setenv("SIMARKET_SNAPSHOT_PATH", " /tmp/snap.json ")

	cfg, err := LoadServerFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Addr)
	}
	if cfg.TickEvery != 250*time.Millisecond {
		t.Errorf("tick every = %v, want 250ms", cfg.TickEvery)
	}
	if cfg.RandomSeed != 1234 {
		t.Errorf("seed = %d, want 1234", cfg.RandomSeed)
	}
	if cfg.SnapshotPath != "/tmp/snap.json" {
		t.Errorf("snapshot path = %q, want trimmed", cfg.SnapshotPath)
	}
}

func TestLoadServerRejectsNonPositiveIntervals(t *testing.T) {
	t.Setenv("SIMARKET_TICK_EVERY", "-1s")
	if _, err := LoadServerFromEnv(); err == nil {
		t.Error("negative tick interval should fail validation")
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	cfg := LoadCLIFromEnv()
	if cfg.APIBaseURL != "http://localhost:8090" {
		t.Errorf("base url = %q, want default", cfg.APIBaseURL)
	}

	t.Setenv("SMK_API_BASE_URL", "http://example.com:7070/")
	cfg = LoadCLIFromEnv()
	if cfg.APIBaseURL != "http://example.com:7070" {
		t.Errorf("base url = %q, want trailing slash trimmed", cfg.APIBaseURL)
	}
}
