package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	Addr              string
	DatabaseURL       string
	SnapshotPath      string
	QuoteRefreshEvery time.Duration
	AccrualEvery      time.Duration
	SimTickEvery      time.Duration
	SnapshotEvery     time.Duration
	SnapshotLoad      bool
	WalkSeed          int64
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("WONDESK_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:              addr,
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SnapshotPath:      strings.TrimSpace(os.Getenv("WONDESK_SNAPSHOT_PATH")),
		QuoteRefreshEvery: envDurationDefault("WONDESK_QUOTE_REFRESH_EVERY", 5*time.Second),
		AccrualEvery:      envDurationDefault("WONDESK_ACCRUAL_EVERY", time.Second),
		SimTickEvery:      envDurationDefault("WONDESK_SIM_TICK_EVERY", time.Second),
		SnapshotEvery:     envDurationDefault("WONDESK_SNAPSHOT_EVERY", 15*time.Second),
		SnapshotLoad:      envBoolDefault("WONDESK_SNAPSHOT_LOAD", true),
		WalkSeed:          envInt64Default("WONDESK_WALK_SEED", 0),
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("WDK_API_BASE_URL", "http://localhost:8080"), "/"),
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

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
