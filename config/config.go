package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (optional; disables rate limiting when empty)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Image storage configuration
	StorageBackend string // "local" or "s3"
	MediaDir       string // root directory for the local backend
	MediaBaseURL   string // URL prefix the local backend is served under
}

// LoadConfig creates a new Config instance with values from environment
// variables or Docker secrets, depending on the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	switch env := GetEnvironment(); env {
	case CI, Test:
		loadEnvConfig(cfg)
	case Development, Production:
		if err := loadSecretsConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	loadStorageConfig(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the postgres connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// loadEnvConfig loads configuration from environment variables only (CI, test)
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
}

// loadSecretsConfig loads configuration from Docker secrets (development, production)
func loadSecretsConfig(cfg *Config) error {
	secrets := make(map[string]string)
	secretFiles := []string{
		"server_port",
		"server_host",
		"db_host",
		"db_port",
		"db_user",
		"db_password",
		"db_name",
		"db_ssl_mode",
		"redis_host",
		"redis_port",
		"redis_password",
		"redis_url",
		"jwt_secret",
	}

	for _, name := range secretFiles {
		content, err := os.ReadFile(filepath.Join(secretsDir(), name))
		if err != nil {
			return fmt.Errorf("failed to read secret %s: %v", name, err)
		}
		secrets[name] = strings.TrimSpace(string(content))
	}

	cfg.ServerPort = secrets["server_port"]
	cfg.ServerHost = secrets["server_host"]
	cfg.DBHost = secrets["db_host"]
	cfg.DBPort = secrets["db_port"]
	cfg.DBUser = secrets["db_user"]
	cfg.DBPassword = secrets["db_password"]
	cfg.DBName = secrets["db_name"]
	cfg.DBSSLMode = secrets["db_ssl_mode"]
	cfg.RedisHost = secrets["redis_host"]
	cfg.RedisPort = secrets["redis_port"]
	cfg.RedisPassword = secrets["redis_password"]
	cfg.RedisURL = secrets["redis_url"]
	cfg.RedisDB = 0
	cfg.JWTSecret = secrets["jwt_secret"]

	return nil
}

// loadStorageConfig loads image storage settings. These come from plain
// environment variables in every environment; AWS credentials for the s3
// backend are resolved through the SDK's default chain.
func loadStorageConfig(cfg *Config) {
	cfg.StorageBackend = os.Getenv("STORAGE_BACKEND")
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = "local"
	}
	cfg.MediaDir = os.Getenv("MEDIA_DIR")
	if cfg.MediaDir == "" {
		cfg.MediaDir = "media"
	}
	cfg.MediaBaseURL = os.Getenv("MEDIA_BASE_URL")
	if cfg.MediaBaseURL == "" {
		cfg.MediaBaseURL = "/media"
	}
}

// secretsDir returns the directory Docker secrets are mounted under.
func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}
