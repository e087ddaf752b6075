package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration for the analytics
// invalidation service.
type Config struct {
	Server Server
	Redis  Redis
	Kafka  Kafka
	Engine Engine
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Redis captures cache store connection settings. An empty URL means Redis
// is not configured and the service falls back to the in-memory store.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures event ingest settings. Empty Brokers disables the consumer.
type Kafka struct {
	Brokers []string
	Topic   string
	Group   string
}

// Engine captures invalidation engine tuning.
type Engine struct {
	// MaxInflight bounds concurrent cache-store calls per engine invocation.
	MaxInflight int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("COURSEPULSE_ADDR", ":8080"),
		},
		Redis: Redis{
			URL:          os.Getenv("COURSEPULSE_REDIS_URL"),
			PoolSize:     envInt("COURSEPULSE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COURSEPULSE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("COURSEPULSE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COURSEPULSE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COURSEPULSE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("COURSEPULSE_KAFKA_BROKERS"),
			Topic:   envString("COURSEPULSE_KAFKA_TOPIC", "analytics.invalidation"),
			Group:   envString("COURSEPULSE_KAFKA_GROUP", "coursepulse-invalidator"),
		},
		Engine: Engine{
			MaxInflight: envInt("COURSEPULSE_MAX_INFLIGHT", 16),
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
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
