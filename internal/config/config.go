package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	App       AppConfig
	AWS       AWSConfig
	Email     EmailConfig
	Storage   StorageConfig
	NATS      NATSConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis settings (rate limit counters)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AppConfig holds application settings
type AppConfig struct {
	Environment string
	// BusinessName appears in email templates and From headers
	BusinessName string
	// AdminEmail receives inquiry notifications and fallback alerts
	AdminEmail string
	// AdminAPIKey protects the order review endpoints
	AdminAPIKey string
}

// AWSConfig holds AWS credentials and settings (shared for SES and S3)
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// EmailConfig holds email provider settings
type EmailConfig struct {
	// AWS SES settings (primary)
	SESFrom     string
	SESFromName string

	// SendGrid settings (fallback)
	SendGridAPIKey string
	SendGridFrom   string

	// Generic SMTP settings (legacy/fallback)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// EnableFailover enables automatic failover to the next provider
	EnableFailover bool
}

// StorageConfig holds design-image asset store settings
type StorageConfig struct {
	S3Bucket    string
	S3KeyPrefix string
}

// NATSConfig holds NATS settings
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// RateLimitConfig holds inquiry rate limit settings
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// Load loads configuration from environment. A local .env file is applied
// first if present so development matches deployed env-var configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "bakery_orders"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment:  getEnv("ENVIRONMENT", "development"),
			BusinessName: getEnv("BUSINESS_NAME", "The Bakehouse"),
			AdminEmail:   getEnv("ADMIN_EMAIL", "orders@thebakehouse.example"),
			AdminAPIKey:  getEnv("ADMIN_API_KEY", ""),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-west-2"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Email: EmailConfig{
			SESFrom:        getEnv("AWS_SES_FROM", ""),
			SESFromName:    getEnv("AWS_SES_FROM_NAME", "The Bakehouse"),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			SendGridFrom:   getEnv("SENDGRID_FROM", ""),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUsername:   getEnv("SMTP_USERNAME", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:       getEnv("SMTP_FROM", ""),
			EnableFailover: getEnvBool("EMAIL_FAILOVER_ENABLED", true),
		},
		Storage: StorageConfig{
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3KeyPrefix: getEnv("S3_KEY_PREFIX", "design-images/"),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			MaxReconnects: getEnvInt("NATS_MAX_RECONNECTS", -1),
			ReconnectWait: time.Duration(getEnvInt("NATS_RECONNECT_WAIT_SECONDS", 2)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
			Window:      time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
