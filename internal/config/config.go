package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// SMTPConfig holds the outgoing mail settings. An empty Host disables SMTP
// delivery and the server falls back to logging the mails.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config holds everything the server reads from the environment.
type Config struct {
	Env            string
	LogLevel       string
	ServerPort     string
	BaseURL        string
	JWTSecret      string
	JWTExpHours    int64
	AdminEmails    []string // signup emails granted the admin role
	GoogleClientID string   // OAuth client id for Google sign-in token checks
	DB             DBConfig
	SMTP           SMTPConfig
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	return &DBConfig{DSN: dsn}, nil
}

// Load reads the full server configuration from environment variables.
func Load() (*Config, error) {
	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	jwtExpHours := int64(24)
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		jwtExpHours = parsed
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + serverPort
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		smtpPort = parsed
	}

	return &Config{
		Env:            getEnvDefault("ENV", "development"),
		LogLevel:       getEnvDefault("LOG_LEVEL", "info"),
		ServerPort:     serverPort,
		BaseURL:        strings.TrimRight(baseURL, "/"),
		JWTSecret:      jwtSecret,
		JWTExpHours:    jwtExpHours,
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		DB:             *dbCfg,
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnvDefault("SMTP_FROM", "no-reply@istapp.local"),
		},
	}, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
