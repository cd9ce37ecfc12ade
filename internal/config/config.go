package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig configures the simarketd daemon.
type ServerConfig struct {
	Addr            string
	DatabaseURL     string
	SnapshotPath    string
	CatalogPath     string
	TickEvery       time.Duration
	MinTickInterval time.Duration
	VerifyDelay     time.Duration
	GameHourEvery   time.Duration
	RandomSeed      int64
}

// CLIConfig configures the smk client.
type CLIConfig struct {
	APIBaseURL string
}

// LoadServerFromEnv builds the daemon config from the environment. The
// snapshot store is optional: DATABASE_URL wins over SIMARKET_SNAPSHOT_PATH,
// and with neither set the engine runs without persistence.
func LoadServerFromEnv() (ServerConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("SIMARKET_ADDR", ":8090")
	}

	cfg := ServerConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SnapshotPath:    strings.TrimSpace(os.Getenv("SIMARKET_SNAPSHOT_PATH")),
		CatalogPath:     strings.TrimSpace(os.Getenv("SIMARKET_CATALOG_PATH")),
		TickEvery:       envDurationDefault("SIMARKET_TICK_EVERY", time.Second),
		MinTickInterval: envDurationDefault("SIMARKET_MIN_TICK_INTERVAL", 1500*time.Millisecond),
		VerifyDelay:     envDurationDefault("SIMARKET_VERIFY_DELAY", 300*time.Millisecond),
		GameHourEvery:   envDurationDefault("SIMARKET_GAME_HOUR_EVERY", 2*time.Second),
		RandomSeed:      envInt64Default("SIMARKET_RANDOM_SEED", 0),
	}
	if cfg.TickEvery <= 0 {
		return cfg, fmt.Errorf("SIMARKET_TICK_EVERY must be > 0")
	}
	if cfg.MinTickInterval <= 0 {
		return cfg, fmt.Errorf("SIMARKET_MIN_TICK_INTERVAL must be > 0")
	}
	if cfg.GameHourEvery <= 0 {
		return cfg, fmt.Errorf("SIMARKET_GAME_HOUR_EVERY must be > 0")
	}
	return cfg, nil
}

// LoadCLIFromEnv builds the CLI client config from the environment.
func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("SMK_API_BASE_URL", "http://localhost:8090"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
