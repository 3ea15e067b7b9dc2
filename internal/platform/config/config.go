// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pinconfig "pinguard/internal/pin/config"
	liststr "pinguard/pkg/platform/strings"
)

// Server captures everything cmd/server needs to wire the process.
type Server struct {
	Addr     string
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	PIN      *pinconfig.Config
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// DatabaseConfig selects PostgreSQL persistence when URL is set; otherwise the
// in-memory stores are used.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the Redis attempt store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string
	AuditTopic  string
	Partitions  int32
	Replication int16
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numeric or duration values are reported rather than silently
// replaced.
func FromEnv() (*Server, error) {
	p := &parser{}
	pin := pinconfig.DefaultConfig()
	pin.Static.BcryptCost = p.intVar("PIN_BCRYPT_COST", pin.Static.BcryptCost)
	pin.Static.Concurrency = p.intVar("PIN_HASH_CONCURRENCY", 0)
	pin.Static.TTL = p.durationVar("PIN_STATIC_TTL", pin.Static.TTL)
	pin.Rotating.Interval = p.durationVar("PIN_ROTATION_INTERVAL", pin.Rotating.Interval)

	cfg := &Server{
		Addr: env("PINGUARD_ADDR", ":8080"),
		Log: LogConfig{
			Level:  strings.ToLower(env("LOG_LEVEL", "info")),
			Format: strings.ToLower(env("LOG_FORMAT", "json")),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    p.intVar("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    p.intVar("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.durationVar("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     liststr.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			AuditTopic:  env("AUDIT_TOPIC", "pinguard.audit"),
			Partitions:  int32(p.intVar("AUDIT_TOPIC_PARTITIONS", 3)),
			Replication: int16(p.intVar("AUDIT_TOPIC_REPLICATION", 1)),
		},
		PIN: pin,
	}
	if p.err != nil {
		return nil, p.err
	}
	if pin.Rotating.Interval < time.Minute {
		return nil, fmt.Errorf("PIN_ROTATION_INTERVAL must be at least 1m, got %s", pin.Rotating.Interval)
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser records the first malformed variable.
type parser struct {
	err error
}

func (p *parser) intVar(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
	}
	if err != nil {
		return def
	}
	return n
}

func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("parse %s: %w", key, err)
		}
		return def
	}
	return d
}
