package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Queue behaviour
	LeaseDuration        time.Duration // how long a pulled entry stays exclusively leased
	PriorityBoost        int           // added to an entry's priority on a manual retry
	DefaultPopulateLimit int
	PullRatePerAgent     int // max pulls per second per agent

	// Phone eligibility: lenient, strict, or hybrid
	PhonePolicy string

	// Background sweep intervals
	ReclaimInterval    time.Duration
	JobReclaimInterval time.Duration
	JobOrphanTimeout   time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		LeaseDuration:        getDuration("LEASE_DURATION", 15*time.Minute),
		PriorityBoost:        getInt("PRIORITY_BOOST", 10),
		DefaultPopulateLimit: getInt("DEFAULT_POPULATE_LIMIT", 500),
		PullRatePerAgent:     getInt("PULL_RATE_PER_AGENT", 5),

		PhonePolicy: getEnv("PHONE_POLICY", "lenient"),

		ReclaimInterval:    getDuration("RECLAIM_INTERVAL", 60*time.Second),
		JobReclaimInterval: getDuration("JOB_RECLAIM_INTERVAL", 30*time.Second),
		JobOrphanTimeout:   getDuration("JOB_ORPHAN_TIMEOUT", 2*time.Minute),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
