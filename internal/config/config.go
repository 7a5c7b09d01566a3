package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration (whatsmeow session store)
	Database DatabaseConfig

	// WhatsApp configuration
	WhatsApp WhatsAppConfig

	// Order API configuration
	Order OrderConfig

	// Logging configuration
	Log LogConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// WhatsAppConfig holds WhatsApp-specific configuration
type WhatsAppConfig struct {
	LogLevel       string
	DeviceName     string // Custom device name that appears in WhatsApp linked devices
	GroupName      string // Display name of the group to relay orders from
	ReconnectDelay time.Duration
	Heartbeat      time.Duration
}

// OrderConfig holds the order-management API configuration
type OrderConfig struct {
	APIEndpoint string
	Timeout     time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// SecurityConfig holds security-specific configuration
type SecurityConfig struct {
	// API keys - when empty, authentication is disabled
	APIKeys []string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvAsInt("PORT", 3000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
			DSN:    getEnv("DB_DSN", "file:orderrelay.db?_foreign_keys=on"),
		},
		WhatsApp: WhatsAppConfig{
			LogLevel:       getEnv("WHATSAPP_LOG_LEVEL", "INFO"),
			DeviceName:     getEnv("WHATSAPP_DEVICE_NAME", "macOS"),
			GroupName:      getEnv("GROUP_NAME", "WEB CUNGS"),
			ReconnectDelay: getEnvAsDuration("WHATSAPP_RECONNECT_DELAY", 5*time.Second),
			Heartbeat:      getEnvAsDuration("WHATSAPP_HEARTBEAT", 5*time.Minute),
		},
		Order: OrderConfig{
			APIEndpoint: getEnv("API_ENDPOINT", "http://localhost:8000/api/orders"),
			Timeout:     getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Security: SecurityConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if strings.TrimSpace(c.WhatsApp.GroupName) == "" {
		return fmt.Errorf("group name is required")
	}

	if _, err := url.ParseRequestURI(c.Order.APIEndpoint); err != nil {
		return fmt.Errorf("invalid order API endpoint %q: %w", c.Order.APIEndpoint, err)
	}

	if c.WhatsApp.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}

	return nil
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}
