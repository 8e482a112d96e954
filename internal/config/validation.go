package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Hyperliquid.validate(); err != nil {
		return err
	}
	if err := c.Trading.validate(); err != nil {
		return err
	}
	return c.Notify.validate()
}

func (h *HyperliquidConfig) validate() error {
	if strings.TrimSpace(h.APIURL) == "" {
		return fmt.Errorf("hyperliquid.api_url cannot be empty")
	}
	if strings.TrimSpace(h.PrivateKey) == "" {
		return fmt.Errorf("hyperliquid.private_key missing (set it or export %s)", envPrivateKey)
	}
	if strings.TrimSpace(h.WalletAddress) == "" {
		return fmt.Errorf("hyperliquid.wallet_address missing (set it or export %s)", envWalletAddress)
	}
	if !strings.HasPrefix(strings.TrimSpace(h.WalletAddress), "0x") {
		return fmt.Errorf("hyperliquid.wallet_address must be a 0x-prefixed address")
	}
	return nil
}

func (t *TradingConfig) validate() error {
	if t.DefaultLeverage <= 0 {
		return fmt.Errorf("trading.default_leverage must be positive")
	}
	if t.VenueName() == "" {
		return fmt.Errorf("trading.expected_exchange cannot be empty")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if !n.Telegram.Enabled {
		return nil
	}
	if strings.TrimSpace(n.Telegram.BotToken) == "" {
		return fmt.Errorf("notify.telegram.bot_token required when telegram is enabled")
	}
	if strings.TrimSpace(n.Telegram.ChatID) == "" {
		return fmt.Errorf("notify.telegram.chat_id required when telegram is enabled")
	}
	return nil
}
