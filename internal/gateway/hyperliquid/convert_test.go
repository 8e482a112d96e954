package hyperliquid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/decision"
)

func TestCoinFromInstrument(t *testing.T) {
	cases := map[string]string{
		"BTCUSD-PERP": "BTC",
		"ETHUSD-PERP": "ETH",
		"btcusd-perp": "BTC",
		"SOLUSDT":     "SOL",
		"BTC":         "BTC",
		" eth ":       "ETH",
	}
	for in, want := range cases {
		assert.Equal(t, want, coinFromInstrument(in), "input %q", in)
	}
}

func TestInstrumentFromCoin(t *testing.T) {
	assert.Equal(t, "BTCUSD-PERP", instrumentFromCoin("BTC", "-PERP"))
	assert.Equal(t, "ETHUSD", instrumentFromCoin(" eth ", ""))
	// round-trips with coinFromInstrument
	assert.Equal(t, "SOL", coinFromInstrument(instrumentFromCoin("SOL", "-PERP")))
}

func TestInstrumentNamingMatchesSignalNormalization(t *testing.T) {
	// positions rebuilt from venue coins must carry the same instrument
	// code signal normalization produces, whatever the signal's quote
	// currency, or held positions become invisible to position lookups
	for _, market := range []string{"BTC_USD", "ETH_USDT", "SOL/USDC", "DOGEUSD", "ARB"} {
		instrument := decision.NormalizeInstrument(market, "-PERP")
		coin := coinFromInstrument(instrument)
		assert.Equal(t, instrument, instrumentFromCoin(coin, "-PERP"), "market %q", market)
	}
}

func TestFormatFloatPlainDecimal(t *testing.T) {
	assert.Equal(t, "43000.12", formatFloat(43000.12))
	assert.Equal(t, "0.0001", formatFloat(0.0001))
	assert.Equal(t, "100000000", formatFloat(1e8))
}

func TestParseFloatTolerant(t *testing.T) {
	assert.Equal(t, 43250.5, parseFloat(" 43250.5 "))
	assert.Equal(t, 0.0, parseFloat(""))
	assert.Equal(t, 0.0, parseFloat("n/a"))
}
