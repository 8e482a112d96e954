package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Env var fallbacks for secrets so credentials can stay out of the yaml.
const (
	envPrivateKey    = "HL_PRIVATE_KEY"
	envWalletAddress = "HL_WALLET_ADDRESS"
	envTelegramToken = "HL_TELEGRAM_BOT_TOKEN"
)

// Load reads the yaml config at path, applies defaults and env fallbacks,
// and validates the result. Any failure comes back as a ConfigurationError
// and is fatal at startup; the service never runs with incomplete
// credentials.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &ConfigurationError{Err: fmt.Errorf("config path cannot be empty")}
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("reading config file %s: %w", path, err)}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("parsing config: %w", err)}
	}
	cfg.applyDefaults()
	cfg.applyEnvFallbacks()
	if err := validate(&cfg); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return &cfg, nil
}

func (c *Config) applyEnvFallbacks() {
	if strings.TrimSpace(c.Hyperliquid.PrivateKey) == "" {
		c.Hyperliquid.PrivateKey = strings.TrimSpace(os.Getenv(envPrivateKey))
	}
	if strings.TrimSpace(c.Hyperliquid.WalletAddress) == "" {
		c.Hyperliquid.WalletAddress = strings.TrimSpace(os.Getenv(envWalletAddress))
	}
	if c.Notify.Telegram.Enabled && strings.TrimSpace(c.Notify.Telegram.BotToken) == "" {
		c.Notify.Telegram.BotToken = strings.TrimSpace(os.Getenv(envTelegramToken))
	}
}
