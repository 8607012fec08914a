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
	Bot       BotConfig
	Data      DataConfig
	Gateway   GatewayConfig
	Prices    PricesConfig
	Dashboard DashboardConfig
	Email     EmailConfig
}

type BotConfig struct {
	Token    string
	Prefix   string
	AdminIDs []string
}

type DataConfig struct {
	Dir string
}

type GatewayConfig struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	MaxAttempts  int
	// ReconcileAfter is how long a payment may sit in "waiting" before the
	// reconciliation worker re-checks it against the gateway.
	ReconcileAfter    time.Duration
	ReconcileInterval time.Duration
}

type PricesConfig struct {
	BaseURL string
}

type DashboardConfig struct {
	Addr         string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type EmailConfig struct {
	SendGridKey string
	From        string
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Bot: BotConfig{
			Token:    os.Getenv("DISCORD_TOKEN"),
			Prefix:   getEnv("COMMAND_PREFIX", "."),
			AdminIDs: splitCSV(os.Getenv("ADMIN_IDS")),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
		Gateway: GatewayConfig{
			BaseURL:           getEnv("NOWPAYMENTS_BASE_URL", "https://api-sandbox.nowpayments.io/v1"),
			APIKey:            os.Getenv("NOWPAYMENTS_API_KEY"),
			PollInterval:      getEnvDuration("PAYMENT_POLL_INTERVAL", 10*time.Second),
			MaxAttempts:       getEnvInt("PAYMENT_POLL_MAX_ATTEMPTS", 30),
			ReconcileAfter:    getEnvDuration("PAYMENT_RECONCILE_AFTER", 10*time.Minute),
			ReconcileInterval: getEnvDuration("PAYMENT_RECONCILE_INTERVAL", time.Minute),
		},
		Prices: PricesConfig{
			BaseURL: getEnv("PRICE_API_BASE_URL", "https://api.coingecko.com/api/v3"),
		},
		Dashboard: DashboardConfig{
			Addr:         getEnv("DASHBOARD_ADDR", ":8080"),
			PasswordHash: os.Getenv("DASHBOARD_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("DASHBOARD_JWT_SECRET"),
			TokenTTL:     getEnvDuration("DASHBOARD_TOKEN_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			SendGridKey: os.Getenv("SENDGRID_API_KEY"),
			From:        getEnv("EMAIL_FROM", "shop@example.com"),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Gateway.APIKey == "" {
		return nil, fmt.Errorf("NOWPAYMENTS_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Printf("Warning: invalid duration for %s, using default\n", key)
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
