package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Service names accepted by Load
const (
	ServiceAuth    = "auth"
	ServiceProject = "project"
	ServiceTask    = "task"
)

type Config struct {
	Service     string
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string

	// Token settings shared by issuer and verifiers
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	JWTJWKSURL      string // When set, verify RS256/ES256 tokens against this JWKS instead of JWTSecret
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Base URLs of the other services
	AuthAPIURL    string
	ProjectAPIURL string
	RelayTimeout  time.Duration

	// Display names fetched from the auth service are cached; membership
	// checks never are
	UsernameCacheSize int
	UsernameCacheTTL  time.Duration

	// Optional policy file watched for changes; the embedded policy otherwise
	PolicyFile string

	// Cron spec for purging expired refresh tokens (auth service)
	TokenPurgeSchedule string

	// Optional log file sink
	LogDir      string
	LogMaxFiles int
}

// Load reads configuration for the named service from the environment
func Load(service string) *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Service:         service,
		Port:            getEnv("PORT", defaultPort(service)),
		Environment:     env,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:5173"),
		TablePrefix:     getTablePrefix(env),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "taskhub-auth"),
		JWTAudience:     getEnv("JWT_AUDIENCE", "taskhub"),
		JWTJWKSURL:      getEnv("JWT_JWKS_URL", ""),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		AuthAPIURL:      strings.TrimRight(getEnv("AUTH_API_URL", "http://localhost:8081"), "/"),
		ProjectAPIURL:   strings.TrimRight(getEnv("PROJECT_API_URL", "http://localhost:8082"), "/"),
		RelayTimeout:    getDuration("RELAY_TIMEOUT", 10*time.Second),

		UsernameCacheSize:  getInt("USERNAME_CACHE_SIZE", 1024),
		UsernameCacheTTL:   getDuration("USERNAME_CACHE_TTL", 5*time.Minute),
		PolicyFile:         getEnv("POLICY_FILE", ""),
		TokenPurgeSchedule: getEnv("TOKEN_PURGE_SCHEDULE", "@hourly"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),
	}
}

// Validate reports every missing or inconsistent setting at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Service {
	case ServiceAuth, ServiceProject, ServiceTask:
	default:
		errs = append(errs, fmt.Errorf("unknown service %q", c.Service))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	// The issuer always signs with the secret; verifiers may use JWKS instead.
	if c.JWTSecret == "" && (c.Service == ServiceAuth || c.JWTJWKSURL == "") {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.Service == ServiceProject && c.AuthAPIURL == "" {
		errs = append(errs, errors.New("AUTH_API_URL is required"))
	}
	if c.Service == ServiceTask && (c.ProjectAPIURL == "" || c.AuthAPIURL == "") {
		errs = append(errs, errors.New("PROJECT_API_URL and AUTH_API_URL are required"))
	}

	return errors.Join(errs...)
}

// IsDev reports whether debug behaviour should be enabled
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func defaultPort(service string) string {
	switch service {
	case ServiceAuth:
		return "8081"
	case ServiceProject:
		return "8082"
	case ServiceTask:
		return "8083"
	default:
		return "8080"
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
