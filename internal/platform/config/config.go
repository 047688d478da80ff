package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformStrings "relato/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Postgres captures the record store connection. An empty DSN selects the
// in-memory stores.
type Postgres struct {
	DSN string
}

// Redis captures the notification fan-out channel. An empty URL disables it.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the activity analytics stream. Empty brokers disable it.
type Kafka struct {
	Brokers       []string
	ActivityTopic string
}

// Moderation captures scorer invocation policy and admission thresholds.
type Moderation struct {
	// Executable overrides scorer executable discovery when non-empty.
	Executable string
	// Script is the scorer script passed as the first argument.
	Script string
	// Threshold is the minimum score for an image to be admitted.
	Threshold float64
	// MaxImages bounds the candidate batch size.
	MaxImages int
	// Concurrency bounds parallel scorer invocations per batch.
	Concurrency int
	// Timeout bounds a single scorer invocation.
	Timeout time.Duration
	// UploadDir holds candidate files during moderation.
	UploadDir string
}

// Engagement captures streak computation policy.
type Engagement struct {
	// LookbackDays bounds the event window consulted for streaks.
	LookbackDays int
}

// Evaluation captures period granularity policy.
type Evaluation struct {
	// WindowsPerYear selects the period granularity: 2 (semester-like) or
	// 4 (quarter-like).
	WindowsPerYear int
}

// Config aggregates process configuration.
type Config struct {
	Server     Server
	Postgres   Postgres
	Redis      Redis
	Kafka      Kafka
	Moderation Moderation
	Engagement Engagement
	Evaluation Evaluation
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("RELATO_ADDR", ":8080"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("RELATO_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("RELATO_REDIS_URL"),
			PoolSize:     envInt("RELATO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("RELATO_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("RELATO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("RELATO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("RELATO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:       envList("RELATO_KAFKA_BROKERS"),
			ActivityTopic: envString("RELATO_KAFKA_ACTIVITY_TOPIC", "relato.activity"),
		},
		Moderation: Moderation{
			Executable:  os.Getenv("RELATO_SCORER_EXECUTABLE"),
			Script:      envString("RELATO_SCORER_SCRIPT", "scripts/check_photo.py"),
			Threshold:   envFloat("RELATO_MODERATION_THRESHOLD", 0.5),
			MaxImages:   envInt("RELATO_MODERATION_MAX_IMAGES", 5),
			Concurrency: envInt("RELATO_MODERATION_CONCURRENCY", 1),
			Timeout:     envDuration("RELATO_SCORER_TIMEOUT", 30*time.Second),
			UploadDir:   envString("RELATO_UPLOAD_DIR", "uploads"),
		},
		Engagement: Engagement{
			LookbackDays: envInt("RELATO_STREAK_LOOKBACK_DAYS", 365),
		},
		Evaluation: Evaluation{
			WindowsPerYear: envInt("RELATO_EVALUATION_WINDOWS_PER_YEAR", 2),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platformStrings.DedupeAndTrim(strings.Split(v, ","))
}
