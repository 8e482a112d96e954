package notifier

import (
	"fmt"
	"strings"
	"time"
)

// TradeEvent is emitted after a non-trivial reconciliation fully fills.
type TradeEvent struct {
	TraceID    string
	Instrument string
	Strategy   string
	Desired    string
	Action     string
	FilledSize float64
	FillPrice  float64
	Leverage   float64
	At         time.Time
}

// ErrorEvent is emitted when a reconciliation fails anywhere past decoding.
type ErrorEvent struct {
	TraceID    string
	Instrument string
	Strategy   string
	Exchange   string
	Message    string
	At         time.Time
}

// renderMessage builds the Telegram Markdown block: bold title plus a
// preformatted body so column alignment survives proportional fonts.
func renderMessage(title string, lines ...string) string {
	body := make([]string, 0, len(lines))
	for _, ln := range lines {
		if ln = strings.TrimSpace(ln); ln != "" {
			body = append(body, ln)
		}
	}
	text := strings.Join(body, "\n")
	if text == "" {
		text = "-"
	}
	return fmt.Sprintf("*%s*\n```text\n%s\n```", strings.TrimSpace(title), text)
}

func (e TradeEvent) render() string {
	return renderMessage("Trade executed ✅",
		fmt.Sprintf("Instrument: %s", e.Instrument),
		fmt.Sprintf("Action: %s → %s", e.Action, e.Desired),
		fmt.Sprintf("Size: %.4f @ %.2f", e.FilledSize, e.FillPrice),
		fmt.Sprintf("Leverage: x%.2f", e.Leverage),
		fmt.Sprintf("Strategy: %s", e.Strategy),
		fmt.Sprintf("Trace: %s", e.TraceID),
	)
}

func (e ErrorEvent) render() string {
	return renderMessage("Trade failed ❌",
		fmt.Sprintf("Instrument: %s", e.Instrument),
		fmt.Sprintf("Exchange: %s", e.Exchange),
		fmt.Sprintf("Strategy: %s", e.Strategy),
		fmt.Sprintf("Error: %s", e.Message),
		fmt.Sprintf("Trace: %s", e.TraceID),
	)
}
