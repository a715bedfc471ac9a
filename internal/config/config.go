package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Module("config", fx.Provide(Load))

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPPort    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SignupCreditGrant is the credit balance a freshly registered
	// profile starts with.
	SignupCreditGrant int64

	// CheckoutReturnURL is where the mocked payment page sends the buyer
	// after completion; the session id is appended as a query parameter.
	CheckoutReturnURL string
	// CheckoutSessionTTLSeconds bounds how long an open checkout session
	// stays redeemable.
	CheckoutSessionTTLSeconds int

	// GenerationProvider selects the image provider adapter ("fal" or "mock").
	GenerationProvider string
	FalAPIKey          string
	FalBaseURL         string

	// GenerateRatePerMinute caps image generations per user. Zero disables
	// the limiter.
	GenerateRatePerMinute int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "image-lizard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPPort:    getenv("HTTP_PORT", "8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "imagelizard"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),

		SignupCreditGrant: getenvInt64("SIGNUP_CREDIT_GRANT", 16),

		CheckoutReturnURL:         getenv("CHECKOUT_RETURN_URL", "/credits"),
		CheckoutSessionTTLSeconds: int(getenvInt64("CHECKOUT_SESSION_TTL_SECONDS", 1800)),

		GenerationProvider: strings.ToLower(getenv("GENERATION_PROVIDER", "mock")),
		FalAPIKey:          strings.TrimSpace(getenv("FAL_API_KEY", "")),
		FalBaseURL:         getenv("FAL_BASE_URL", "https://fal.run"),

		GenerateRatePerMinute: int(getenvInt64("GENERATE_RATE_PER_MINUTE", 10)),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
