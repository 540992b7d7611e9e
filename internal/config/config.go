// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names the Content Client implementation.
const (
	BackendREST     = "rest"     // Hosted datastore over HTTPS
	BackendPostgres = "postgres" // Direct database connection
)

// DatastoreConfig holds the hosted datastore endpoint and keys
type DatastoreConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string // Optional; bypasses row-level security for admin tools
	JWTSecret  string // Optional; enables signature checks on session tokens
	Timeout    time.Duration
}

// DatabaseConfig holds direct database connection settings
type DatabaseConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AIConfig holds the chat-completion endpoint settings
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Config holds the complete application configuration
type Config struct {
	Backend   string
	Datastore *DatastoreConfig
	Database  *DatabaseConfig
	AI        *AIConfig
	Log       *LogConfig
	Debug     bool
}

// DefaultDatastoreConfig provides default hosted datastore settings
func DefaultDatastoreConfig() *DatastoreConfig {
	return &DatastoreConfig{
		Timeout: 15 * time.Second,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Port:    5432,      // Default PostgreSQL port
		SSLMode: "require", // Default to requiring SSL for security
	}
}

// DefaultAIConfig provides default completion endpoint settings
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama3-8b-8192",
		Timeout: 30 * time.Second,
	}
}

// LoadConfig loads configuration from a .env file and environment variables and applies defaults
func LoadConfig() (*Config, error) {
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/<tool>
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		if home, err := os.UserConfigDir(); err == nil {
			_ = godotenv.Load(filepath.Join(home, "stackit", ".env"))
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Backend:   strings.ToLower(getEnvOrDefault("STACKIT_BACKEND", BackendREST)),
		Datastore: DefaultDatastoreConfig(),
		Database:  DefaultDatabaseConfig(),
		AI:        DefaultAIConfig(),
		Log: &LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Debug: getEnvAsBool("DEBUG", false),
	}
	// DEBUG overrides LOG_LEVEL
	if cfg.Debug {
		cfg.Log.Level = "debug"
	}

	var err error

	// Hosted datastore
	cfg.Datastore.URL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	cfg.Datastore.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	cfg.Datastore.ServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	cfg.Datastore.JWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	if cfg.Datastore.Timeout, err = getEnvAsDuration("DATASTORE_TIMEOUT", cfg.Datastore.Timeout); err != nil {
		return nil, err
	}

	// AI endpoint
	cfg.AI.APIKey = os.Getenv("GROQ_API_KEY")
	cfg.AI.BaseURL = strings.TrimRight(getEnvOrDefault("GROQ_BASE_URL", cfg.AI.BaseURL), "/")
	cfg.AI.Model = getEnvOrDefault("GROQ_MODEL", cfg.AI.Model)
	if cfg.AI.Timeout, err = getEnvAsDuration("AI_TIMEOUT", cfg.AI.Timeout); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendREST:
		if cfg.Datastore.URL == "" {
			return nil, fmt.Errorf("SUPABASE_URL environment variable is required when STACKIT_BACKEND is rest")
		}
		if cfg.Datastore.AnonKey == "" && cfg.Datastore.ServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY or SUPABASE_SERVICE_KEY environment variable is required when STACKIT_BACKEND is rest")
		}
	case BackendPostgres:
		if err := loadDatabaseConfig(cfg.Database); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported STACKIT_BACKEND %q (want %q or %q)", cfg.Backend, BackendREST, BackendPostgres)
	}

	return cfg, nil
}

func loadDatabaseConfig(dbConfig *DatabaseConfig) error {
	// Prioritize DATABASE_URL if provided
	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		dbConfig.URI = uri
		dbConfig.SSLMode = getSSLModeFromURI(uri)
		return nil
	}

	// Fallback to individual variables if DATABASE_URL is not set
	dbConfig.Host = getEnvOrDefault("DB_HOST", "localhost")

	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("DB_PORT must be a number: %w", err)
		}
		dbConfig.Port = port
	}

	dbConfig.User = os.Getenv("DB_USER")
	if dbConfig.User == "" {
		return fmt.Errorf("DB_USER environment variable is required when STACKIT_BACKEND is postgres and DATABASE_URL is not set")
	}

	dbConfig.Password = os.Getenv("DB_PASSWORD")
	if dbConfig.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required when STACKIT_BACKEND is postgres and DATABASE_URL is not set")
	}

	dbConfig.Name = getEnvOrDefault("DB_NAME", "postgres")
	dbConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

	dbConfig.URI = fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Name,
		dbConfig.SSLMode,
	)
	return nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}

// getEnvAsDuration accepts Go durations ("20s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func getSSLModeFromURI(uri string) string {
	if _, query, ok := strings.Cut(uri, "?"); ok {
		for _, param := range strings.Split(query, "&") {
			if k, v, ok := strings.Cut(param, "="); ok && k == "sslmode" {
				return v
			}
		}
	}
	return "require"
}
