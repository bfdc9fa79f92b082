package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	Environment  string // "development" or "production"

	// Base URL used to build password reset links.
	ResetBaseURL string

	// Secret used to sign and verify session tokens.
	JWTSecret string

	// Registration key that bootstraps admin accounts; empty disables it.
	AdminRegistrationKey string

	// SMTP settings for the email notification channel.
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	// Recipient for high-risk action alerts.
	AlertEmail string

	// Slack incoming webhook for high-risk action alerts; empty disables it.
	SlackWebhookURL string

	AllowedOrigin string
}

// Load loads configuration from environment variables or sets defaults. A
// .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:           port,
		DatabasePath:         getEnv("DATABASE_PATH", "./rbac-admin.db"),
		Environment:          getEnv("APP_ENV", "development"),
		ResetBaseURL:         getEnv("RESET_BASE_URL", "http://localhost:3000"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AdminRegistrationKey: os.Getenv("ADMIN_REGISTRATION_KEY"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             smtpPort,
		SMTPUser:             os.Getenv("SMTP_USER"),
		SMTPPass:             os.Getenv("SMTP_PASS"),
		EmailFrom:            getEnv("EMAIL_FROM", "noreply@localhost"),
		AlertEmail:           os.Getenv("ADMIN_ALERT_EMAIL"),
		SlackWebhookURL:      os.Getenv("SLACK_WEBHOOK_URL"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
