package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	SLA          SLAConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN                string
	MaxConns           int32
	MinConns           int32
	RunMigrations      bool
	ConnMaxIdleSec     int32
	ConnMaxLifeSec     int32
	ConnectMaxWaitSecs int
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SLAConfig describes the business calendar and target table sources.
type SLAConfig struct {
	WorkDays                  string
	WorkStartHour             int
	WorkEndHour               int
	Timezone                  string
	Holidays                  string
	TargetsFile               string
	DefaultFirstResponseHours float64
	DefaultResolutionHours    float64
	ScanIntervalSeconds       int
	NotifyDedupeTTLMinutes    int
}

// CacheConfig tunes in-process caches.
type CacheConfig struct {
	CustomerTTLSeconds int
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	SlackWebhookURL string
	SlackChannel    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	firstResponse, err := getEnvAsFloat("SLA_DEFAULT_FIRST_RESPONSE_HOURS", 4)
	if err != nil {
		return nil, err
	}
	resolution, err := getEnvAsFloat("SLA_DEFAULT_RESOLUTION_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-sla"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:                os.Getenv("POSTGRES_DSN"),
			MaxConns:           int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:           int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:      getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:     int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:     int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectMaxWaitSecs: getEnvAsInt("POSTGRES_CONNECT_MAX_WAIT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		SLA: SLAConfig{
			WorkDays:                  getEnv("SLA_WORK_DAYS", "mon,tue,wed,thu,fri"),
			WorkStartHour:             getEnvAsInt("SLA_WORK_START_HOUR", 9),
			WorkEndHour:               getEnvAsInt("SLA_WORK_END_HOUR", 18),
			Timezone:                  getEnv("SLA_TIMEZONE", "UTC"),
			Holidays:                  os.Getenv("SLA_HOLIDAYS"),
			TargetsFile:               os.Getenv("SLA_TARGETS_FILE"),
			DefaultFirstResponseHours: firstResponse,
			DefaultResolutionHours:    resolution,
			ScanIntervalSeconds:       getEnvAsInt("SLA_SCAN_INTERVAL_SECONDS", 300),
			NotifyDedupeTTLMinutes:    getEnvAsInt("SLA_NOTIFY_DEDUPE_TTL_MINUTES", 60),
		},
		Cache: CacheConfig{
			CustomerTTLSeconds: getEnvAsInt("CUSTOMER_CACHE_TTL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			SlackWebhookURL: os.Getenv("NOTIFY_SLACK_WEBHOOK_URL"),
			SlackChannel:    os.Getenv("NOTIFY_SLACK_CHANNEL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ScanInterval is the breach monitor period; zero disables the monitor.
func (s SLAConfig) ScanInterval() time.Duration {
	if s.ScanIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.ScanIntervalSeconds) * time.Second
}

func (s SLAConfig) NotifyDedupeTTL() time.Duration {
	return time.Duration(s.NotifyDedupeTTLMinutes) * time.Minute
}

func (c CacheConfig) CustomerTTL() time.Duration {
	return time.Duration(c.CustomerTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// Malformed hour values are an error, not a fallback.
func getEnvAsFloat(key string, fallback float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
