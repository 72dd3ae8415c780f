package environments

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Webhook  WebhookConfig
	Dispatch DispatchConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type WebhookConfig struct {
	URL     string
	AuthKey string
	Timeout time.Duration
}

// DispatchConfig controls how a job walks its rules and contacts.
type DispatchConfig struct {
	// WaitTime is the pause after every successful send.
	WaitTime           time.Duration
	PhonePolicy        string
	DefaultCountryCode string
	MaxContentLength   int
	MaxConcurrentJobs  int
}

type LogConfig struct {
	Level string
	File  string
}

const (
	PhonePolicyRequireExplicit = "require_explicit"
	PhonePolicyPrependDefault  = "prepend_default"
)

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables always win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           GetEnv("SERVER_PORT", "8080"),
			MaxUploadBytes: int64(GetEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Enabled:  GetEnvAsBool("DB_ENABLED", true),
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "dispatch"),
			Password: GetEnv("DB_PASSWORD", "dispatch123"),
			DBName:   GetEnv("DB_NAME", "contact_dispatch"),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", true),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Webhook: WebhookConfig{
			URL:     GetEnv("WEBHOOK_URL", "http://localhost:3000/send"),
			AuthKey: GetEnv("WEBHOOK_AUTH_KEY", ""),
			Timeout: time.Duration(GetEnvAsInt("WEBHOOK_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Dispatch: DispatchConfig{
			WaitTime:           time.Duration(GetEnvAsInt("DISPATCH_WAIT_SECONDS", 10)) * time.Second,
			PhonePolicy:        strings.ToLower(GetEnv("PHONE_POLICY", PhonePolicyRequireExplicit)),
			DefaultCountryCode: GetEnv("DEFAULT_COUNTRY_CODE", "+91"),
			MaxContentLength:   GetEnvAsInt("MESSAGE_MAX_CONTENT_LENGTH", 4096),
			MaxConcurrentJobs:  GetEnvAsInt("MAX_CONCURRENT_JOBS", 4),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
			File:  GetEnv("LOG_FILE", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
