package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/reference"
)

// Config represents the complete application configuration
type Config struct {
	Risk       RiskConfig       `mapstructure:"risk"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// RiskConfig holds pillar weights and the neutral pillar default
type RiskConfig struct {
	Weights           map[string]float64 `mapstructure:"weights"`
	DefaultScore      float64            `mapstructure:"default_score"`
	DefaultConfidence float64            `mapstructure:"default_confidence"`
}

// EscalationConfig holds the world-war model defaults
type EscalationConfig struct {
	BaseScore       float64  `mapstructure:"base_score"`
	EscalationScore float64  `mapstructure:"escalation_score"`
	Theaters        []string `mapstructure:"theaters"`
}

// MonitorConfig holds change detection configuration
type MonitorConfig struct {
	TrendThreshold       float64       `mapstructure:"trend_threshold"`
	PillarAlertThreshold float64       `mapstructure:"pillar_alert_threshold"`
	NotificationCooldown time.Duration `mapstructure:"notification_cooldown"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds storage and persistence configuration
type StorageConfig struct {
	DBPath         string `mapstructure:"db_path"`
	MaxAssessments int    `mapstructure:"max_assessments"`
}

// MetricsConfig holds metrics export configuration. An empty path disables the export.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// GEORISK_STORAGE_DB_PATH overrides storage.db_path
	v.SetEnvPrefix("GEORISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	weights := make(map[string]interface{}, len(models.AllPillars))
	for name, w := range reference.DefaultWeights() {
		weights[string(name)] = w
	}
	v.SetDefault("risk.weights", weights)
	v.SetDefault("risk.default_score", models.DefaultPillarScore)
	v.SetDefault("risk.default_confidence", models.DefaultPillarConfidence)

	v.SetDefault("escalation.base_score", 75.0)
	v.SetDefault("escalation.escalation_score", 50.0)

	v.SetDefault("monitor.trend_threshold", 5.0)
	v.SetDefault("monitor.pillar_alert_threshold", 15.0)
	v.SetDefault("monitor.notification_cooldown", "6h")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.db_path", "./data/georisk.db")
	v.SetDefault("storage.max_assessments", 10000)

	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
// Errors wrap models.ErrConfiguration.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	return nil
}

func (c *Config) validate() error {
	// Validate Risk config
	for name := range c.Risk.Weights {
		if !models.PillarName(name).Valid() {
			return fmt.Errorf("risk.weights has unknown pillar %q", name)
		}
	}
	if err := c.Tables().Validate(); err != nil {
		return err
	}
	neutral := models.PillarScore{Score: c.Risk.DefaultScore, Confidence: c.Risk.DefaultConfidence}
	if err := neutral.Validate(); err != nil {
		return fmt.Errorf("risk default pillar score: %v", err)
	}

	// Validate Escalation config
	if c.Escalation.BaseScore < 0 || c.Escalation.BaseScore > 100 {
		return fmt.Errorf("escalation.base_score must be between 0 and 100")
	}
	if c.Escalation.EscalationScore < 0 || c.Escalation.EscalationScore > 100 {
		return fmt.Errorf("escalation.escalation_score must be between 0 and 100")
	}

	// Validate Monitor config
	if c.Monitor.TrendThreshold <= 0 {
		return fmt.Errorf("monitor.trend_threshold must be positive")
	}
	if c.Monitor.PillarAlertThreshold <= 0 {
		return fmt.Errorf("monitor.pillar_alert_threshold must be positive")
	}
	if c.Monitor.NotificationCooldown < 0 {
		return fmt.Errorf("monitor.notification_cooldown must not be negative")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxAssessments < 1 {
		return fmt.Errorf("storage.max_assessments must be at least 1")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Tables builds the reference tables with the configured pillar weights.
func (c *Config) Tables() reference.Tables {
	weights := make(map[models.PillarName]float64, len(c.Risk.Weights))
	for name, w := range c.Risk.Weights {
		weights[models.PillarName(name)] = w
	}
	return reference.Default().WithWeights(weights)
}
