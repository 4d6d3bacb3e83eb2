package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	NotificationQueue string `mapstructure:"NOTIFICATION_QUEUE"`
	ActivityQueue     string `mapstructure:"ACTIVITY_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	ActivityLogLimit int `mapstructure:"ACTIVITY_LOG_LIMIT"`
}

var keys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"RABBITMQ_URL", "NOTIFICATION_QUEUE", "ACTIVITY_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_SENDER",
	"ACTIVITY_LOG_LIMIT",
}

var appConfig *Config

// LoadConfig reads configuration from the environment. When PATH_CONFIG
// points to a YAML file its values are used as a base that environment
// variables override.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORE_DRIVER", StoreFirestore)
	v.SetDefault("SQLITE_PATH", "audti.db")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("NOTIFICATION_QUEUE", "audti.notifications")
	v.SetDefault("ACTIVITY_QUEUE", "audti.activity")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("ACTIVITY_LOG_LIMIT", 100)

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("PATH_CONFIG")

	if path := v.GetString("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	appConfig = &cfg
	return appConfig, nil
}

// ValidateServer checks the settings the HTTP API needs.
func (c *Config) ValidateServer() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	switch c.StoreDriver {
	case StoreFirestore:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of firestore, postgres, sqlite; got %q", c.StoreDriver)
	}
	if c.ActivityLogLimit <= 0 {
		return errors.New("ACTIVITY_LOG_LIMIT must be positive")
	}
	return nil
}

// ValidateNotifier checks the settings the notification worker needs.
func (c *Config) ValidateNotifier() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	if c.SMTPHost == "" {
		return errors.New("SMTP_HOST is required")
	}
	if c.SMTPUsername == "" || c.SMTPPassword == "" {
		return errors.New("SMTP_USERNAME and SMTP_PASSWORD are required")
	}
	if c.MailSender == "" {
		return errors.New("MAIL_SENDER is required")
	}
	return nil
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
