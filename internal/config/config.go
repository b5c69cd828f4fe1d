package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Deployment modes understood by APP_MODE.
const (
	ModeDev        = "dev"
	ModeProduction = "production"
	ModeVercel     = "vercel"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	CORS        CORSConfig      `yaml:"cors"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Bootstrap   BootstrapConfig `yaml:"bootstrap"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// CORSConfig holds the single allowed browser origin, resolved from the
// deployment mode at load time.
type CORSConfig struct {
	Mode          string            `yaml:"mode"`
	Origins       map[string]string `yaml:"origins"`
	AllowedOrigin string            `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// BootstrapConfig seeds a single login account at startup when both fields are set.
type BootstrapConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
		},
		CORS: CORSConfig{
			Mode:    ModeDev,
			Origins: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			ServiceName:  "eventboard",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Load reads configuration from the environment only.
func Load() (Config, error) {
	cfg := defaults()
	applyEnv(&cfg)
	return finalize(cfg)
}

// LoadFile reads a YAML file as the base configuration and lets environment
// variables override it.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.CORS.Origins == nil {
		cfg.CORS.Origins = map[string]string{}
	}
	applyEnv(&cfg)
	return finalize(cfg)
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)

	cfg.CORS.Mode = getEnv("APP_MODE", cfg.CORS.Mode)
	for mode, key := range map[string]string{
		ModeDev:        "ALLOWED_ORIGIN_DEV",
		ModeProduction: "ALLOWED_ORIGIN_PROD",
		ModeVercel:     "ALLOWED_ORIGIN_VERCEL",
	} {
		if value := os.Getenv(key); value != "" {
			cfg.CORS.Origins[mode] = value
		}
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Bootstrap.Username = getEnv("BOOTSTRAP_USERNAME", cfg.Bootstrap.Username)
	cfg.Bootstrap.Password = getEnv("BOOTSTRAP_PASSWORD", cfg.Bootstrap.Password)
}

func finalize(cfg Config) (Config, error) {
	cfg.CORS.Mode = normalizeMode(cfg.CORS.Mode)
	cfg.CORS.AllowedOrigin = strings.TrimSpace(cfg.CORS.Origins[cfg.CORS.Mode])
	if cfg.Environment == "" {
		cfg.Environment = cfg.CORS.Mode
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	return cfg, nil
}

// normalizeMode maps unknown or empty modes to dev.
func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeProduction:
		return ModeProduction
	case ModeVercel:
		return ModeVercel
	default:
		return ModeDev
	}
}

// Warnings reports misconfigurations that degrade the server without
// stopping it.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Auth.JWTSecret == "" {
		warnings = append(warnings, "JWT_SECRET is not set; login and protected routes will fail")
	}
	if c.CORS.AllowedOrigin == "" {
		warnings = append(warnings, fmt.Sprintf("no allowed CORS origin configured for APP_MODE %q; all origins will be accepted", c.CORS.Mode))
	}
	return warnings
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
