package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type Config struct {
	HTTPAddr  string
	JWTSecret string

	DBDriver string
	DBDSN    string

	RedisAddr string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AWSRegion         string
	CognitoUserPoolID string

	NotifyConcurrency int
	NotifyTimeout     time.Duration

	CronWarrantySpec       string
	CronSupplySpec         string
	SupplyExpiryWindowDays int
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file loaded, using process environment")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:               getEnv("HTTP_ADDR", ":6060"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		DBDriver:               getEnv("DB_DRIVER", "sqlite"),
		DBDSN:                  getEnv("DB_DSN", "./database.db"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPass:               getEnv("SMTP_PASS", ""),
		SMTPFrom:               getEnv("SMTP_FROM", ""),
		AWSRegion:              getEnv("AWS_REGION", ""),
		CognitoUserPoolID:      getEnv("COGNITO_USER_POOL_ID", ""),
		NotifyConcurrency:      getEnvInt("NOTIFY_CONCURRENCY", 8),
		NotifyTimeout:          getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		CronWarrantySpec:       getEnv("CRON_WARRANTY_SPEC", "0 1 * * *"),
		CronSupplySpec:         getEnv("CRON_SUPPLY_SPEC", "0 7 * * *"),
		SupplyExpiryWindowDays: getEnvInt("SUPPLY_EXPIRY_WINDOW_DAYS", 30),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, errors.New("DB_DRIVER must be sqlite or postgres")
	}
	if cfg.NotifyConcurrency < 1 {
		cfg.NotifyConcurrency = 1
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
