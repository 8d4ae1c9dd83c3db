package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"coursebot/internal/domain"
	"coursebot/internal/security"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	BotToken           string
	OwnerID            string
	FeedbackChannel    string
	FileSharingChannel string
	HTTPAddr           string
	Storage            StorageConfig
	Catalog            CatalogConfig
	Broadcast          BroadcastConfig
	Database           DatabaseConfig
}

// StorageConfig selects where users and broadcasts are kept
type StorageConfig struct {
	Backend string
	DataDir string
}

// CatalogConfig locates course materials
type CatalogConfig struct {
	MappingPath    string
	NavigationPath string
	ContentRoot    string
	FileCheckTTL   time.Duration
}

// BroadcastConfig holds broadcast limits and the optional link button
type BroadcastConfig struct {
	PerMinute  int
	PerHour    int
	ButtonText string
	ButtonURL  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:           os.Getenv("BOT_TOKEN"),
		OwnerID:            os.Getenv("BOT_OWNER_ID"),
		FeedbackChannel:    os.Getenv("FEEDBACK_CHANNEL"),
		FileSharingChannel: os.Getenv("FILE_SHARING_CHANNEL"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendJSON),
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Catalog: CatalogConfig{
			MappingPath:    getEnv("FILE_MAPPING_PATH", "auto_file_mapping.json"),
			NavigationPath: getEnv("NAVIGATION_PATH", "navigation.yaml"),
			ContentRoot:    getEnv("CONTENT_ROOT", "."),
		},
		Broadcast: BroadcastConfig{
			ButtonText: os.Getenv("BROADCAST_BUTTON_TEXT"),
			ButtonURL:  os.Getenv("BROADCAST_BUTTON_URL"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "coursebot"),
			User:     getEnv("DB_USER", "coursebot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	var err error
	if cfg.Catalog.FileCheckTTL, err = getEnvDuration("FILE_CHECK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Broadcast.PerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.Broadcast.PerHour, err = getEnvInt("RATE_LIMIT_PER_HOUR", 100); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if !security.IsValidTokenFormat(c.BotToken) {
		return fmt.Errorf("BOT_TOKEN has an invalid format")
	}
	if c.OwnerID == "" {
		return fmt.Errorf("BOT_OWNER_ID is required")
	}
	if _, err := strconv.ParseInt(c.OwnerID, 10, 64); err != nil {
		return fmt.Errorf("BOT_OWNER_ID must be a numeric Telegram ID")
	}

	switch c.Storage.Backend {
	case BackendJSON:
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendJSON, BackendPostgres)
	}

	if (c.Broadcast.ButtonText == "") != (c.Broadcast.ButtonURL == "") {
		return fmt.Errorf("BROADCAST_BUTTON_TEXT and BROADCAST_BUTTON_URL must be set together")
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// FeedbackTarget is the chat that receives /feedback messages
func (c *Config) FeedbackTarget() string {
	if c.FeedbackChannel != "" {
		return c.FeedbackChannel
	}
	return c.OwnerID
}

// FileSharingTarget is the chat that receives /send uploads
func (c *Config) FileSharingTarget() string {
	if c.FileSharingChannel != "" {
		return c.FileSharingChannel
	}
	return c.OwnerID
}

// UserDataPath is the JSON registry artifact
func (c *Config) UserDataPath() string {
	return filepath.Join(c.Storage.DataDir, "user_data.json")
}

// BroadcastDataPath is the JSON broadcast history artifact
func (c *Config) BroadcastDataPath() string {
	return filepath.Join(c.Storage.DataDir, "broadcast_data.json")
}

// BroadcastButtons returns the inline buttons attached to every broadcast
func (c *Config) BroadcastButtons() []domain.LinkButton {
	if c.Broadcast.ButtonText == "" {
		return nil
	}
	return []domain.LinkButton{{Text: c.Broadcast.ButtonText, URL: c.Broadcast.ButtonURL}}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
