package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/acadrisk/acadrisk/pkg/auth"
	"github.com/acadrisk/acadrisk/pkg/kafka"
	"github.com/acadrisk/acadrisk/pkg/postgres"
	"github.com/acadrisk/acadrisk/pkg/tlsutil"
)

// ServiceName identifies the service in logs, traces and metrics.
const ServiceName = "prediction-service"

// Config holds all configuration for the prediction service.
type Config struct {
	Model     ModelConfig
	Kafka     KafkaConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
	JWT       auth.JWTConfig
	TLS       tlsutil.Files
	DB        postgres.Config

	GRPCPort      string
	HTTPPort      string
	MigrationsDir string
	Environment   string
	LogLevel      string
	LogFormat     string
	CORSOrigins   []string

	RateLimit      float64 // requests per second per client, 0 disables
	RateBurst      int
	RequestTimeout time.Duration
	MaxBatchSize   int
}

// ModelConfig locates the trained model artifact.
type ModelConfig struct {
	Path       string // file path or s3://bucket/key
	S3Region   string
	S3Endpoint string
}

// KafkaConfig holds broker settings and topic names.
type KafkaConfig struct {
	kafka.Config
	EventsTopic   string
	RequestsTopic string // empty disables the batch-request consumer
	ResultsTopic  string
}

// CacheConfig holds Redis settings for the prediction cache.
type CacheConfig struct {
	Addr     string // empty disables caching
	Password string
	DB       int
	TTL      time.Duration
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	OTLPEndpoint string
	Insecure     bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Model: ModelConfig{
			Path:       getEnv("MODEL_PATH", "./model.json"),
			S3Region:   getEnv("AWS_REGION", ""),
			S3Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Kafka: KafkaConfig{
			Config: kafka.Config{
				Brokers:       kafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
				ClientID:      getEnv("KAFKA_CLIENT_ID", ServiceName),
				ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", ServiceName),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnv("KAFKA_SASL_USERNAME", "") != "",
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "prediction.events"),
			RequestsTopic: getEnv("KAFKA_REQUESTS_TOPIC", ""),
			ResultsTopic:  getEnv("KAFKA_RESULTS_TOPIC", "prediction.batch_completed"),
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:     getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		JWT: auth.JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			PublicKeyPEM: getEnv("JWT_PUBLIC_KEY", ""),
			Issuer:       getEnv("JWT_ISSUER", "acadrisk"),
			Expiration:   getEnvDuration("JWT_EXPIRATION", time.Hour),
		},
		TLS: tlsutil.Files{
			CertFile: getEnv("TLS_CERT_FILE", ""),
			KeyFile:  getEnv("TLS_KEY_FILE", ""),
		},
		DB: postgres.Config{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 1)),
		},
		GRPCPort:       getEnv("GRPC_PORT", "9090"),
		HTTPPort:       getEnv("HTTP_PORT", "8000"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimit:      getEnvFloat("RATE_LIMIT", 50),
		RateBurst:      getEnvInt("RATE_BURST", 100),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBatchSize:   getEnvInt("MAX_BATCH_SIZE", 1000),
	}
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// PersistenceEnabled reports whether a database is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.DB.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
