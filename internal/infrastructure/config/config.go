package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration (hub login sessions)
	RedisAddr     string
	RedisPassword string

	// Token configuration
	Issuer            string
	CodeTTL           time.Duration
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	SessionTTL        time.Duration
	CodeSweepInterval time.Duration

	// Cookie configuration
	CookieSecure bool

	// Server configuration
	ServerPort int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	codeTTL, err := time.ParseDuration(getEnv("OAUTH_CODE_TTL", "60s"))
	if err != nil {
		return nil, err
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_DURATION", "1h"))
	if err != nil {
		return nil, err
	}

	refreshTTL, err := time.ParseDuration(getEnv("REFRESH_TOKEN_DURATION", "720h"))
	if err != nil {
		return nil, err
	}

	sessionTTL, err := time.ParseDuration(getEnv("AUTH_SESSION_DURATION", "10m"))
	if err != nil {
		return nil, err
	}

	sweepInterval, err := time.ParseDuration(getEnv("OAUTH_CODE_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "owner"),
		DBPassword: getEnv("DB_PASSWORD", "ownerTest"),
		DBName:     getEnv("DB_NAME", "authhub"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Issuer:            getEnv("OAUTH_ISSUER", "http://localhost:8080"),
		CodeTTL:           codeTTL,
		AccessTokenTTL:    accessTTL,
		RefreshTokenTTL:   refreshTTL,
		SessionTTL:        sessionTTL,
		CodeSweepInterval: sweepInterval,

		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		ServerPort: getEnvInt("PORT", 8080),
	}, nil
}

// NewConfig creates a configuration with default values
func NewConfig() *Config {
	return &Config{
		DBPort:            5432,
		RedisAddr:         "localhost:6379",
		Issuer:            "http://localhost:8080",
		CodeTTL:           domain.DefaultCodeTTL,
		AccessTokenTTL:    domain.DefaultAccessTokenTTL,
		RefreshTokenTTL:   domain.DefaultRefreshTokenTTL,
		SessionTTL:        domain.DefaultSessionTTL,
		CodeSweepInterval: domain.DefaultCodeSweepInterval,
		ServerPort:        8080,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
