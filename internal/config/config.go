package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Security  SecurityConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	Audit     AuditConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// APIConfig points at the upstream reservations REST API.
type APIConfig struct {
	BaseURL string
	// Timeout bounds each outbound call. Zero leaves cancellation to the caller's context.
	Timeout time.Duration
	// ServiceToken authenticates background jobs that run outside a staff request.
	ServiceToken string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

// Enabled reports whether inbound tokens should be verified locally.
func (s SecurityConfig) Enabled() bool {
	return strings.TrimSpace(s.JWTSecret) != "" || strings.TrimSpace(s.JWTPublicKey) != ""
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

type SchedulerConfig struct {
	RefreshSchedule string
}

type AuditConfig struct {
	Driver string
	DSN    string
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

// Load reads the configuration from the environment. Call godotenv first to honour a local .env.
func Load() (*Config, error) {
	timeout, err := durationFromEnv("RESERVATIONS_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	brokers := listFromEnv("KAFKA_BROKERS")
	if len(brokers) == 0 {
		brokers = listFromEnv("KAFKA_BROKER")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           stringFromEnv("PORT", "8080"),
			AllowedOrigins: listFromEnv("CORS_ALLOWED_ORIGINS"),
		},
		API: APIConfig{
			BaseURL:      stringFromEnv("RESERVATIONS_API_URL", "http://localhost:8000/api"),
			Timeout:      timeout,
			ServiceToken: strings.TrimSpace(os.Getenv("SERVICE_ACCESS_TOKEN")),
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTPublicKey: strings.ReplaceAll(strings.TrimSpace(os.Getenv("JWT_PUBLIC_KEY")), `\n`, "\n"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			GroupID: stringFromEnv("KAFKA_GROUP_ID", "reservations-gateway"),
			Topics:  listFromEnvOrDefault("KAFKA_TOPICS", []string{"reservations.events"}),
		},
		Scheduler: SchedulerConfig{
			RefreshSchedule: stringFromEnv("REFRESH_SCHEDULE", "@every 1m"),
		},
		Audit: AuditConfig{
			Driver: strings.ToLower(stringFromEnv("AUDIT_DRIVER", "sqlite")),
			DSN:    stringFromEnv("AUDIT_DSN", "./audit.db"),
		},
		Logging: LoggingConfig{
			Directory: stringFromEnv("LOG_DIRECTORY", "./logs"),
			Level:     stringFromEnv("LOG_LEVEL", "info"),
			Format:    stringFromEnv("LOG_FORMAT", "text"),
		},
	}

	switch cfg.Audit.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported AUDIT_DRIVER %q", cfg.Audit.Driver)
	}

	return cfg, nil
}

func stringFromEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func listFromEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func listFromEnvOrDefault(key string, fallback []string) []string {
	if values := listFromEnv(key); len(values) > 0 {
		return values
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", key)
	}
	return value, nil
}
