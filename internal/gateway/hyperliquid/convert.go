package hyperliquid

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseFloat tolerates the venue's decimal-string fields, returning 0 for
// empty or malformed values.
func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatFloat renders a price or size as the plain decimal string the venue
// expects, never scientific notation, without trailing zeros.
func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// coinFromInstrument maps the service's normalized instrument code back to
// the venue's bare coin name: "BTCUSD-PERP" -> "BTC". The venue keys its
// books by coin so the suffix and quote currency are shed here.
func coinFromInstrument(instrument string) string {
	coin := strings.ToUpper(strings.TrimSpace(instrument))
	if idx := strings.Index(coin, "-"); idx >= 0 {
		coin = coin[:idx]
	}
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(coin, quote) && len(coin) > len(quote) {
			coin = strings.TrimSuffix(coin, quote)
			break
		}
	}
	return coin
}

// instrumentFromCoin is the inverse mapping for positions read back from the
// venue: "BTC" with suffix "-PERP" becomes "BTCUSD-PERP", matching what
// signal normalization produces.
func instrumentFromCoin(coin, suffix string) string {
	return strings.ToUpper(strings.TrimSpace(coin)) + "USD" + suffix
}
