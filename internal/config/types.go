package config

import "strings"

// Config is the top-level configuration carrier for the automation service.
type Config struct {
	App         AppConfig         `toml:"app"`
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Trading     TradingConfig     `toml:"trading"`
	Notify      NotifyConfig      `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// HyperliquidConfig describes how to reach the venue. PrivateKey signs
// exchange actions; WalletAddress is the account queried for state (they
// differ when trading through an API wallet).
type HyperliquidConfig struct {
	APIURL         string `toml:"api_url"`
	PrivateKey     string `toml:"private_key"`
	WalletAddress  string `toml:"wallet_address"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TradingConfig controls signal acceptance and order shaping.
type TradingConfig struct {
	ExpectedExchange string  `toml:"expected_exchange"` // inbound signals must name this venue
	InstrumentSuffix string  `toml:"instrument_suffix"` // appended after stripping the market separator
	DefaultLeverage  float64 `toml:"default_leverage"`  // used when the signal omits sizeByLeverage
	IsolatedMargin   bool    `toml:"isolated_margin"`   // false = cross margin
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// VenueName returns the canonical lowercase venue identifier signals are
// matched against.
func (t TradingConfig) VenueName() string {
	return strings.ToLower(strings.TrimSpace(t.ExpectedExchange))
}
