package config

import (
	"os"
	"strconv"
	"time"

	"helperhive/internal/cache"
	"helperhive/internal/database"
	"helperhive/internal/domain"
	"helperhive/internal/external"
	"helperhive/internal/messaging"
	"helperhive/internal/search"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	PprofEnabled bool
	PprofPort    string

	Auth     AuthConfig
	Booking  BookingConfig
	Payouts  PayoutConfig
	Database database.Config
	NATS     messaging.Config
	Redis    cache.Config
	Search   search.Config
	Gateway  external.GatewayConfig
	Notify   external.NotifyConfig
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
}

// BookingConfig carries the pricing and cancellation policy knobs.
//
// The cancel and refund-request paths intentionally keep separate tier
// tables: the product rule for the >24h bucket differs between them
// (100% on self-service cancel, 90% on an explicit refund request).
type BookingConfig struct {
	CommissionRate float64
	Currency       string
	CancelPolicy   domain.RefundPolicy
	RefundPolicy   domain.RefundPolicy
}

type PayoutConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		PprofEnabled: getEnv("PPROF_ENABLED", "false") == "true",
		PprofPort:    getEnv("PPROF_PORT", "6060"),

		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "helperhive-dev-secret"),
			TokenTTL:  time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,
			OTPTTL:    time.Duration(getEnvInt("OTP_TTL_MIN", 10)) * time.Minute,
		},

		Booking: BookingConfig{
			CommissionRate: getEnvFloat("COMMISSION_RATE", 0.10),
			Currency:       getEnv("CURRENCY", "ZAR"),
			CancelPolicy: domain.RefundPolicy{
				Tiers: []domain.RefundTier{
					{MinHours: 24, Percent: getEnvInt("CANCEL_REFUND_PCT_OVER_24H", 100)},
					{MinHours: 2, Percent: getEnvInt("CANCEL_REFUND_PCT_OVER_2H", 50)},
				},
			},
			RefundPolicy: domain.RefundPolicy{
				Tiers: []domain.RefundTier{
					{MinHours: 24, Percent: getEnvInt("REQUEST_REFUND_PCT_OVER_24H", 90)},
					{MinHours: 2, Percent: getEnvInt("REQUEST_REFUND_PCT_OVER_2H", 50)},
				},
			},
		},

		Payouts: PayoutConfig{
			Interval: time.Duration(getEnvInt("PAYOUT_INTERVAL_MIN", 15)) * time.Minute,
		},

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "helperhive"),
			Password:           getEnv("DB_PASSWORD", "helperhive123"),
			DBName:             getEnv("DB_NAME", "helperhive"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "helperhive"),
			ClientID:  getEnv("NATS_CLIENT_ID", "helperhive-api"),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},

		Search: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_PROVIDERS_INDEX", "providers"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},

		Gateway: external.GatewayConfig{
			BaseURL:    getEnv("PAYMENT_GATEWAY_URL", "https://gateway.example.com"),
			MerchantID: getEnv("PAYMENT_MERCHANT_ID", ""),
			SecretKey:  getEnv("PAYMENT_SECRET_KEY", ""),
			Timeout:    time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},

		Notify: external.NotifyConfig{
			BaseURL: getEnv("NOTIFY_SERVICE_URL", "https://notify.example.com"),
			APIKey:  getEnv("NOTIFY_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("NOTIFY_TIMEOUT_SEC", 15)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
