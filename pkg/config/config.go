package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	Port             string
	IsProduction     bool
	EnableDBCheck    bool
	AppSourceBaseURL string
	AppSourceTimeout time.Duration
	KafkaBrokers     []string
	ReconcileCron    string
	RateLimit        string
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("APPSOURCE_BASE_URL", "")
	viper.SetDefault("APPSOURCE_TIMEOUT", "10s")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("RECONCILE_CRON", "0 3 * * *")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.AppSourceBaseURL = viper.GetString("APPSOURCE_BASE_URL")
	if cfg.AppSourceBaseURL == "" {
		log.Println("Warning: APPSOURCE_BASE_URL not set. Payment sync will be unavailable.")
	}

	timeoutStr := viper.GetString("APPSOURCE_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 10 * time.Second
		log.Printf("Warning: Invalid value for APPSOURCE_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.AppSourceTimeout = timeout

	brokersStr := viper.GetString("KAFKA_BROKERS")
	if brokersStr != "" {
		cfg.KafkaBrokers = splitAndTrim(brokersStr)
	} else {
		log.Println("Warning: KAFKA_BROKERS not set. Payment events will not be published.")
	}

	cfg.ReconcileCron = viper.GetString("RECONCILE_CRON")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSOrigins = splitAndTrim(viper.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
