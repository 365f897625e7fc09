package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Clinic
	ClinicName     string
	ClinicTimezone string
	CatalogFile    string

	// Calendar store
	CalendarBackend       string // "google" or "memory"
	GoogleCalendarID      string
	GoogleTokenFile       string
	GoogleCredentialsFile string
	CalendarTimeout       time.Duration

	// Slot guard (optional, Redis)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SlotLockTTL   time.Duration

	// Tool endpoints
	ToolsJWTSecret string
	RateLimitRPS   float64
	RateLimitBurst int

	// Receptionist agent
	GeminiAPIKey  string
	GeminiModelID string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ClinicName:     getEnv("CLINIC_NAME", "Dental Clinic"),
		ClinicTimezone: getEnv("CLINIC_TIMEZONE", "Asia/Karachi"),
		CatalogFile:    getEnv("CATALOG_FILE", ""),

		CalendarBackend:       strings.ToLower(strings.TrimSpace(getEnv("CALENDAR_BACKEND", "google"))),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", ""),
		GoogleTokenFile:       getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		CalendarTimeout:       getEnvAsDuration("CALENDAR_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SlotLockTTL:   getEnvAsDuration("SLOT_LOCK_TTL", 30*time.Second),

		ToolsJWTSecret: getEnv("TOOLS_JWT_SECRET", ""),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
	}
}

// UsesMemoryCalendar reports whether the in-process calendar store is selected.
func (c *Config) UsesMemoryCalendar() bool {
	return c.CalendarBackend == "memory"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
