package app

import (
	"fmt"
	"strings"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
)

// StartupSummary is the human-readable configuration block printed once at
// boot so a glance at the log tells which account and venue are live.
type StartupSummary struct {
	Env              string
	HTTPAddr         string
	APIURL           string
	WalletAddress    string
	ExpectedExchange string
	InstrumentSuffix string
	DefaultLeverage  float64
	MarginMode       string
	TelegramEnabled  bool
}

func buildSummary(cfg *config.Config, addr string) *StartupSummary {
	margin := "cross"
	if cfg.Trading.IsolatedMargin {
		margin = "isolated"
	}
	return &StartupSummary{
		Env:              cfg.App.Env,
		HTTPAddr:         addr,
		APIURL:           cfg.Hyperliquid.APIURL,
		WalletAddress:    maskAddress(cfg.Hyperliquid.WalletAddress),
		ExpectedExchange: cfg.Trading.VenueName(),
		InstrumentSuffix: cfg.Trading.InstrumentSuffix,
		DefaultLeverage:  cfg.Trading.DefaultLeverage,
		MarginMode:       margin,
		TelegramEnabled:  cfg.Notify.Telegram.Enabled,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 72))

	fmt.Println("[SERVICE]")
	fmt.Printf("  env:       %s\n", orDash(s.Env))
	fmt.Printf("  http:      %s\n", s.HTTPAddr)
	fmt.Printf("  telegram:  %v\n", s.TelegramEnabled)
	fmt.Println()

	fmt.Println("[VENUE]")
	fmt.Printf("  api:       %s\n", s.APIURL)
	fmt.Printf("  wallet:    %s\n", s.WalletAddress)
	fmt.Printf("  exchange:  %s\n", s.ExpectedExchange)
	fmt.Println()

	fmt.Println("[TRADING]")
	fmt.Printf("  suffix:    %s\n", s.InstrumentSuffix)
	fmt.Printf("  leverage:  x%.2f (default)\n", s.DefaultLeverage)
	fmt.Printf("  margin:    %s\n", s.MarginMode)
	fmt.Println(strings.Repeat("=", 72))
}

// maskAddress keeps only enough of the wallet to recognize it in logs.
func maskAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
