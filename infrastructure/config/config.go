package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Export source kinds
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production test"`

	// Export source
	ExportSource    string        `yaml:"export_source" validate:"oneof=http file"`
	BackendURL      string        `yaml:"backend_url" validate:"omitempty,url"`
	ExportPath      string        `yaml:"export_path"`
	ExportFile      string        `yaml:"export_file" validate:"required_if=ExportSource file"`
	WatchExportFile bool          `yaml:"watch_export_file"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
	MaxExportBytes  int64         `yaml:"max_export_bytes" validate:"gte=0"`

	// Circuit breaker around the backend
	BreakerMaxRequests      uint32        `yaml:"breaker_max_requests" validate:"gte=1"`
	BreakerInterval         time.Duration `yaml:"breaker_interval"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout" validate:"gt=0"`
	BreakerFailureThreshold float64       `yaml:"breaker_failure_threshold" validate:"gt=0,lte=1"`
	BreakerMinRequests      uint32        `yaml:"breaker_min_requests"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Feature flags
	EnableMetrics  bool     `yaml:"enable_metrics"`
	EnableTracing  bool     `yaml:"enable_tracing"`
	OTLPEndpoint   string   `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`
	EnableCORS     bool     `yaml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	envErrors []string
}

// DefaultConfig returns the configuration used before any file or
// environment override is applied
func DefaultConfig() *Config {
	return &Config{
		ServerAddress:           ":8080",
		Environment:             "development",
		ExportSource:            SourceHTTP,
		BackendURL:              "http://localhost:8000",
		ExportPath:              "/api/v1/graph/",
		FetchTimeout:            30 * time.Second,
		BreakerMaxRequests:      1,
		BreakerInterval:         30 * time.Second,
		BreakerTimeout:          30 * time.Second,
		BreakerFailureThreshold: 0.6,
		BreakerMinRequests:      3,
		LogLevel:                "info",
		JWTIssuer:               "kgraph",
		EnableCORS:              true,
		AllowedOrigins:          []string{"http://localhost:3000"},
	}
}

// LoadConfig loads configuration from defaults, the optional YAML file
// named by CONFIG_FILE and environment variables, in that order
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnvironmentVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironmentVariables() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.ExportSource = strings.ToLower(getEnv("EXPORT_SOURCE", c.ExportSource))
	c.BackendURL = getEnv("BACKEND_URL", c.BackendURL)
	c.ExportPath = getEnv("EXPORT_PATH", c.ExportPath)
	c.ExportFile = getEnv("EXPORT_FILE", c.ExportFile)
	c.WatchExportFile = getEnvBool("WATCH_EXPORT_FILE", c.WatchExportFile)
	c.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", c.FetchTimeout)
	c.MaxExportBytes = int64(getEnvInt("MAX_EXPORT_BYTES", int(c.MaxExportBytes)))

	c.BreakerMaxRequests = c.getEnvUint32("BREAKER_MAX_REQUESTS", c.BreakerMaxRequests)
	c.BreakerInterval = getEnvDuration("BREAKER_INTERVAL", c.BreakerInterval)
	c.BreakerTimeout = getEnvDuration("BREAKER_TIMEOUT", c.BreakerTimeout)
	c.BreakerFailureThreshold = getEnvFloat("BREAKER_FAILURE_THRESHOLD", c.BreakerFailureThreshold)
	c.BreakerMinRequests = c.getEnvUint32("BREAKER_MIN_REQUESTS", c.BreakerMinRequests)

	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.AllowedOrigins)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if len(c.envErrors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(c.envErrors, "; "))
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.ExportSource == SourceHTTP && c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required for the http export source")
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	return nil
}

// AuthEnabled reports whether bearer tokens are required on the API
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvUint32 parses a count. Negative or non-numeric values are kept out
// of the config and reported by Validate.
func (c *Config) getEnvUint32(key string, defaultValue uint32) uint32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		c.envErrors = append(c.envErrors, fmt.Sprintf("%s must be a non-negative integer, got %q", key, value))
		return defaultValue
	}
	return uint32(n)
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
