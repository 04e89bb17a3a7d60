package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // RULES_LOCATION must resolve on hosts without zoneinfo

	"github.com/robfig/cron/v3"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	Rules     RulesConfig
	Ingest    IngestConfig
	Firebase  FirebaseConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AdminConfig struct {
	KeyHash string // bcrypt hash of the X-Admin-Key value
}

type RulesConfig struct {
	Location     string // IANA zone messages are parsed in
	SyncEnabled  bool
	SyncSchedule string // cron spec
	RemoteURL    string // gs://bucket/object
}

type IngestConfig struct {
	LegacyFallback   bool
	MinMessageLength int
	CurrencySymbol   string
	WorkerCount      int
	QueueSize        int
	JobDelay         time.Duration
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
	SampleRatio  float64 // fraction of root traces kept
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	minLength, err := getIntEnv("MIN_MESSAGE_LENGTH", 20)
	if err != nil {
		return nil, err
	}
	workers, err := getIntEnv("INGEST_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	queueSize, err := getIntEnv("INGEST_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	jobDelay, err := time.ParseDuration(getEnv("INGEST_JOB_DELAY", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_JOB_DELAY: %w", err)
	}
	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLE_RATIO: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: splitList(getEnv("ALLOWED_HOSTS", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "smsledger"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "smsledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Admin: AdminConfig{
			KeyHash: getEnv("ADMIN_KEY_HASH", ""),
		},
		Rules: RulesConfig{
			Location:     getEnv("RULES_LOCATION", "Asia/Kolkata"),
			SyncEnabled:  getBoolEnv("RULES_SYNC_ENABLED", false),
			SyncSchedule: getEnv("RULES_SYNC_SCHEDULE", "*/15 * * * *"),
			RemoteURL:    getEnv("RULES_REMOTE_URL", ""),
		},
		Ingest: IngestConfig{
			LegacyFallback:   getBoolEnv("LEGACY_FALLBACK_ENABLED", true),
			MinMessageLength: minLength,
			CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "₹"),
			WorkerCount:      workers,
			QueueSize:        queueSize,
			JobDelay:         jobDelay,
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "smsledger-api"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
			SampleRatio:  sampleRatio,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Admin.KeyHash == "" {
		return fmt.Errorf("ADMIN_KEY_HASH is required")
	}
	if !strings.HasPrefix(c.Admin.KeyHash, "$2") {
		return fmt.Errorf("ADMIN_KEY_HASH must be a bcrypt hash")
	}

	if _, err := time.LoadLocation(c.Rules.Location); err != nil {
		return fmt.Errorf("invalid RULES_LOCATION: %w", err)
	}
	if c.Rules.SyncEnabled {
		if c.Rules.RemoteURL == "" {
			return fmt.Errorf("RULES_REMOTE_URL is required when RULES_SYNC_ENABLED=true")
		}
		if _, err := cron.ParseStandard(c.Rules.SyncSchedule); err != nil {
			return fmt.Errorf("invalid RULES_SYNC_SCHEDULE: %w", err)
		}
	}

	if c.Ingest.MinMessageLength < 0 {
		return fmt.Errorf("MIN_MESSAGE_LENGTH must not be negative")
	}
	if c.Ingest.WorkerCount < 1 {
		return fmt.Errorf("INGEST_WORKERS must be at least 1")
	}
	if c.Ingest.QueueSize < 1 {
		return fmt.Errorf("INGEST_QUEUE_SIZE must be at least 1")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
