// Package config loads function configuration from the Lambda environment.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/pricofy/crypto-price-api/internal/logging"
)

// Config materialises function configuration.
type Config struct {
	TableName string         `mapstructure:"table_name"`
	Mail      MailConfig     `mapstructure:"mail"`
	Price     PriceConfig    `mapstructure:"price"`
	Display   DisplayConfig  `mapstructure:"display"`
	Logging   logging.Config `mapstructure:"logging"`
}

// MailConfig covers the SMTP relay.
type MailConfig struct {
	SSMParameter string `mapstructure:"ssm_parameter"`
	User         string `mapstructure:"user"`
	From         string `mapstructure:"from"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
}

// PriceConfig covers the CoinGecko API.
type PriceConfig struct {
	SSMParameter string        `mapstructure:"ssm_parameter"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Currency     string        `mapstructure:"currency"`
}

// DisplayConfig controls how timestamps are shown in notifications.
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// envBindings maps config keys to the environment variables set by the
// deployment template.
var envBindings = map[string]string{
	"table_name":          "TABLE_NAME",
	"mail.ssm_parameter":  "MAILTRAP_SSM_PARAMETER_NAME",
	"mail.user":           "MAILTRAP_USER",
	"mail.from":           "FROM_EMAIL",
	"mail.host":           "SMTP_HOST",
	"mail.port":           "SMTP_PORT",
	"price.ssm_parameter": "COINGECKO_API_KEY_SSM_PARAM_NAME",
	"price.base_url":      "COINGECKO_BASE_URL",
	"price.timeout":       "COINGECKO_TIMEOUT",
	"price.currency":      "QUOTE_CURRENCY",
	"display.timezone":    "DISPLAY_TIMEZONE",
	"logging.level":       "LOG_LEVEL",
	"logging.format":      "LOG_FORMAT",
	"logging.caller":      "LOG_CALLER",
}

// LoadLookup loads and validates configuration for the lookup function.
func LoadLookup() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateLookup(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadHistory loads and validates configuration for the history function.
func LoadHistory() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateHistory(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from the environment without validating it.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Price.Currency = strings.ToLower(strings.TrimSpace(cfg.Price.Currency))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mail.host", "live.smtp.mailtrap.io")
	v.SetDefault("mail.port", 587)

	v.SetDefault("price.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("price.timeout", "10s")
	v.SetDefault("price.currency", "usd")

	v.SetDefault("display.timezone", "Australia/Sydney")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.caller", false)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}
}

// ValidateHistory checks the settings the history function needs.
func (c *Config) ValidateHistory() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME environment variable not set")
	}
	return nil
}

// ValidateLookup checks the settings the lookup function needs.
func (c *Config) ValidateLookup() error {
	if err := c.ValidateHistory(); err != nil {
		return err
	}
	if c.Mail.SSMParameter == "" {
		return fmt.Errorf("MAILTRAP_SSM_PARAMETER_NAME environment variable not set")
	}
	if c.Mail.User == "" {
		return fmt.Errorf("MAILTRAP_USER environment variable not set")
	}
	if c.Mail.From == "" {
		return fmt.Errorf("FROM_EMAIL environment variable not set")
	}
	if c.Price.SSMParameter == "" {
		return fmt.Errorf("COINGECKO_API_KEY_SSM_PARAM_NAME environment variable not set")
	}
	if c.Mail.Port <= 0 {
		return fmt.Errorf("SMTP_PORT must be greater than zero")
	}
	if c.Price.Currency == "" {
		return fmt.Errorf("QUOTE_CURRENCY must not be empty")
	}
	if c.Price.Timeout <= 0 {
		return fmt.Errorf("COINGECKO_TIMEOUT must be greater than zero")
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.Display.Timezone, err)
	}
	return nil
}
