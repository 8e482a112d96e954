// Package decision holds the pure reconciliation vocabulary: the inbound
// trade signal, the desired-position domain, and the closed Action set the
// decider maps them to. Nothing in here touches the network.
package decision

import (
	"fmt"
	"strings"
)

// Desired is the authoritative target state carried by a signal.
type Desired string

const (
	DesiredFlat  Desired = "flat"
	DesiredLong  Desired = "long"
	DesiredShort Desired = "short"
)

// ParseDesired normalizes the webhook `position` field.
func ParseDesired(raw string) (Desired, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "flat":
		return DesiredFlat, nil
	case "long":
		return DesiredLong, nil
	case "short":
		return DesiredShort, nil
	default:
		return "", &ValidationError{Field: "position", Reason: fmt.Sprintf("unknown value %q", raw)}
	}
}

// Signal is one validated inbound trade signal. It is immutable after parse
// and consumed exactly once by the trader.
type Signal struct {
	TraceID  string  // request-scoped id, generated at the ingress
	Exchange string  // must match the configured venue name upstream
	Market   string  // raw market code from the signal source, e.g. "BTC_USD"
	Desired  Desired // authoritative target state
	Leverage float64 // positive leverage multiplier
	Price    float64 // informational signal price, display only
	Strategy string  // opaque strategy label, passed through to notifications
	Order    string  // informational direction hint, never authoritative
}

// NormalizeInstrument maps a raw market code to the venue's canonical
// instrument naming: separators stripped, the quote currency collapsed to
// USD, the configured suffix appended. "BTC_USD" and "BTC_USDT" with suffix
// "-PERP" both become "BTCUSD-PERP". The venue settles every perp in the
// same collateral, so differently-quoted signal codes must land on the same
// instrument as positions read back from the venue.
func NormalizeInstrument(market, suffix string) string {
	code := strings.ToUpper(strings.TrimSpace(market))
	code = strings.NewReplacer("_", "", "/", "", "-", "").Replace(code)
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(code, quote) && len(code) > len(quote) {
			code = strings.TrimSuffix(code, quote)
			break
		}
	}
	return code + "USD" + suffix
}
