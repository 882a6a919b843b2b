package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/notblessy/mealplan-admin/utils"
	"github.com/sirupsen/logrus"
)

// Config holds the configuration for the application.
type Config struct {
	DatabaseURL string
	HTTPAddr    string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	// Dates excluded from working days
	Holidays []time.Time

	LogLevel  string
	LogFormat string
}

// Load reads a .env file when present and builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("cannot load .env file")
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	holidays, err := parseHolidays(os.Getenv("PLAN_HOLIDAYS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          httpAddr,
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Holidays:          holidays,
		LogLevel:          logLevel,
		LogFormat:         os.Getenv("LOG_FORMAT"),
	}, nil
}

// ValidateDatabase checks the settings needed to open the database
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return nil
}

// ValidateServer checks the settings needed to serve HTTP
func (c *Config) ValidateServer() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if c.AdminEmail == "" || c.AdminPasswordHash == "" {
		logrus.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, login is disabled")
	}
	return nil
}

// SetupLogger applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger
func (c *Config) SetupLogger() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func parseHolidays(raw string) ([]time.Time, error) {
	var holidays []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := utils.ParseDate(part)
		if err != nil {
			return nil, fmt.Errorf("invalid PLAN_HOLIDAYS entry %q: %w", part, err)
		}
		holidays = append(holidays, d)
	}
	return holidays, nil
}
