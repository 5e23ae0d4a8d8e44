// config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Instrument is the static descriptor of one tradable instrument.
// The set is fixed at startup and never mutated at runtime.
type Instrument struct {
	// Name is the display name and the key under which positions are persisted.
	Name string `yaml:"name"`
	// Ticker is the market-data symbol (Yahoo Finance chart API).
	Ticker string `yaml:"ticker"`
	// ConfirmSymbol is the symbol used by the confirmation service.
	ConfirmSymbol string `yaml:"confirm_symbol"`
	// SizeDampener scales the computed position size to correct for
	// the notional-per-unit gap between instrument classes (metals vs FX).
	SizeDampener float64 `yaml:"size_dampener"`
}

// AccountConfig holds the simulated account parameters.
type AccountConfig struct {
	DefaultBalance float64 `yaml:"default_balance"`
	RiskFraction   float64 `yaml:"risk_fraction"`
}

// EngineConfig holds the decision engine parameters.
type EngineConfig struct {
	IntervalSeconds       int     `yaml:"interval_seconds"`
	BarInterval           string  `yaml:"bar_interval"`
	LookbackDays          int     `yaml:"lookback_days"`
	MinHistoryBars        int     `yaml:"min_history_bars"`
	EMAPeriod             int     `yaml:"ema_period"`
	RSIPeriod             int     `yaml:"rsi_period"`
	ATRPeriod             int     `yaml:"atr_period"`
	StopATRMultiple       float64 `yaml:"stop_atr_multiple"`
	MaxPositionSize       float64 `yaml:"max_position_size"`
	ConfirmTimeoutSeconds int     `yaml:"confirm_timeout_seconds"`
}

// LogConfig holds the configuration for logging.
type LogConfig struct {
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// NormalConfig holds all general, non-strategy-specific configuration.
type NormalConfig struct {
	HTTPTimeoutSeconds       int    `yaml:"http_timeout_seconds"`
	HeartbeatIntervalMinutes int    `yaml:"heartbeat_interval_minutes"`
	LogDirectory             string `yaml:"log_directory"`
	StateDirectory           string `yaml:"state_directory"`
}

// Config is the top-level configuration structure.
type Config struct {
	Instruments   []Instrument   `yaml:"instruments"`
	Account       *AccountConfig `yaml:"account"`
	Engine        *EngineConfig  `yaml:"engine"`
	Logs          *LogConfig     `yaml:"logs"`
	Normal        *NormalConfig  `yaml:"normal_config"`
	UseSimulation bool           `yaml:"use_simulation"`
}

// NewConfig creates a Config with allocated nested blocks but no magic
// numbers. All critical parameters MUST come from the config.yaml file.
func NewConfig() *Config {
	return &Config{
		UseSimulation: false,
		Account:       &AccountConfig{},
		Engine:        &EngineConfig{},
		Logs:          &LogConfig{},
		Normal:        &NormalConfig{},
	}
}

// LoadConfig loads configuration from a given path and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Error: Config file not found at %s. Program cannot run without a config file", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the logical consistency and completeness of the entire configuration.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("Critical config missing: at least one entry under 'instruments' must be specified in config.yaml")
	}
	seen := make(map[string]bool, len(c.Instruments))
	for i, inst := range c.Instruments {
		if inst.Name == "" {
			return fmt.Errorf("Config error: instruments[%d].name must not be empty", i)
		}
		if inst.Ticker == "" {
			return fmt.Errorf("Config error: instrument '%s' has no ticker", inst.Name)
		}
		if inst.SizeDampener <= 0 {
			return fmt.Errorf("Config error: instrument '%s' must have a positive size_dampener", inst.Name)
		}
		if seen[inst.Name] {
			return fmt.Errorf("Config error: duplicate instrument name '%s'", inst.Name)
		}
		seen[inst.Name] = true
	}

	if c.Account == nil {
		return fmt.Errorf("Critical config missing: 'account' configuration block must be provided in config.yaml")
	}
	if c.Account.DefaultBalance <= 0 {
		return fmt.Errorf("Critical config missing: 'account.default_balance' must be explicitly specified in config.yaml and be positive")
	}
	if c.Account.RiskFraction <= 0 || c.Account.RiskFraction >= 1 {
		return fmt.Errorf("Config error: account.risk_fraction must be in (0, 1), got %.4f", c.Account.RiskFraction)
	}

	if c.Engine == nil {
		return fmt.Errorf("Critical config missing: 'engine' configuration block must be provided in config.yaml")
	}
	if c.Engine.IntervalSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.interval_seconds' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.BarInterval == "" {
		return fmt.Errorf("Critical config missing: 'engine.bar_interval' must be explicitly specified in config.yaml (e.g., '15m')")
	}
	if c.Engine.LookbackDays <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.lookback_days' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.MinHistoryBars <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.min_history_bars' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.EMAPeriod <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.ema_period' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.RSIPeriod <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.rsi_period' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.ATRPeriod <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.atr_period' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.StopATRMultiple <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.stop_atr_multiple' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.MaxPositionSize <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.max_position_size' must be explicitly specified in config.yaml and be positive")
	}
	if c.Engine.ConfirmTimeoutSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'engine.confirm_timeout_seconds' must be explicitly specified in config.yaml and be positive")
	}

	if c.Normal == nil {
		return fmt.Errorf("Critical config missing: 'normal_config' configuration block must be provided in config.yaml")
	}
	if c.Normal.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.http_timeout_seconds' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.HeartbeatIntervalMinutes <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.heartbeat_interval_minutes' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.LogDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.log_directory' must be explicitly specified in config.yaml (e.g., 'logs')")
	}
	if c.Normal.StateDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.state_directory' must be explicitly specified in config.yaml (e.g., 'state')")
	}

	if c.Logs == nil {
		return fmt.Errorf("Critical config missing: 'logs' configuration block must be provided in config.yaml")
	}
	if c.Logs.LogLevel == "" {
		return fmt.Errorf("Critical config missing: 'logs.log_level' must be explicitly specified in config.yaml (e.g., 'info', 'debug', 'warn', 'error')")
	}
	if c.Logs.MaxSizeMB <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_size_mb' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxBackups <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_backups' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxAgeDays <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_age_days' must be explicitly specified in config.yaml and be positive")
	}

	return nil
}

// EnvConfig carries secrets loaded from the environment (.env or system).
type EnvConfig struct {
	TelegramToken   string
	TelegramChatID  string
	AlphaVantageKey string
}

func LoadEnvConfig() *EnvConfig {
	return &EnvConfig{
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:  os.Getenv("CHAT_ID"),
		AlphaVantageKey: os.Getenv("ALPHA_VANTAGE_KEY"),
	}
}
