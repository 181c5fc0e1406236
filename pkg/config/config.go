package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	Environment    string
	AllowedOrigins []string

	FirebaseProject    string
	FirebaseApiKey     string
	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string
	NotificationsTopic string
	JWTSecret          string
	JWTExpiry          int64

	GeminiApiKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	PaymentProvider       string
	StripeSecretKey       string
	PaymentCurrency       string
	PaymentSimulatedDelay time.Duration
	PaymentTimeout        time.Duration

	SupportHandoffDelay time.Duration
	CartSessionTTL      time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", nil),

		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:     getEnv("FIREBASE_API_KEY", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		NotificationsTopic: getEnv("PUBSUB_NOTIFICATIONS_TOPIC", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiry:          getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours

		GeminiApiKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:   getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),

		PaymentProvider:       getEnv("PAYMENT_PROVIDER", "simulated"),
		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency:       getEnv("PAYMENT_CURRENCY", "usd"),
		PaymentSimulatedDelay: getEnvAsDuration("PAYMENT_SIMULATED_DELAY", 2*time.Second),
		PaymentTimeout:        getEnvAsDuration("PAYMENT_TIMEOUT", 30*time.Second),

		SupportHandoffDelay: getEnvAsDuration("SUPPORT_HANDOFF_DELAY", 1500*time.Millisecond),
		CartSessionTTL:      getEnvAsDuration("CART_SESSION_TTL", 30*time.Minute),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) validate() error {
	if c.FirebaseProject == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	switch c.PaymentProvider {
	case "simulated":
	case "stripe":
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	if !c.IsDevelopment() && c.JWTSecret != "" {
		// dev tokens are only honoured in development; a secret elsewhere is a misconfiguration
		return fmt.Errorf("JWT_SECRET must not be set outside development")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
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
