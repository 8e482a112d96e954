// Package trader holds the reconciliation core: it compares a signal's
// desired position against the venue's current position and issues the
// minimal set of orders to converge, with bounded fill-verifying retries.
package trader

import (
	"context"
	"time"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/decision"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/notifier"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
)

// Outcome summarizes one completed reconciliation.
type Outcome struct {
	TraceID    string
	Instrument string
	Action     decision.Action
	FilledSize float64
	FillPrice  float64
	Leverage   float64
}

// Trader drives signals end to end. One signal is processed sequentially;
// there is no internal queue and no concurrent order flow per instrument.
type Trader struct {
	venue  exchange.Exchange
	events *notifier.Dispatcher
	cfg    config.TradingConfig
	exec   *executor
	now    func() time.Time
}

func New(venue exchange.Exchange, events *notifier.Dispatcher, cfg config.TradingConfig) *Trader {
	return &Trader{
		venue:  venue,
		events: events,
		cfg:    cfg,
		exec:   newExecutor(venue),
		now:    time.Now,
	}
}

// Handle reconciles one signal. A no-op decision returns silently; every
// executed action emits a trade event and every failure an error event.
// Notification delivery is fire-and-forget and never affects the returned
// error.
func (t *Trader) Handle(ctx context.Context, sig decision.Signal) (Outcome, error) {
	instrument := decision.NormalizeInstrument(sig.Market, t.cfg.InstrumentSuffix)
	leverage := sig.Leverage
	if leverage <= 0 {
		leverage = t.cfg.DefaultLeverage
	}
	out := Outcome{TraceID: sig.TraceID, Instrument: instrument, Leverage: leverage}

	state, err := t.venue.AccountState(ctx)
	if err != nil {
		terr := &TransportError{Op: "account state", Err: err}
		t.fail(sig, instrument, terr)
		return out, terr
	}
	current := state.PositionFor(instrument)
	action := decision.Decide(sig.Desired, current)
	out.Action = action
	logger.Infof("signal %s: %s desired=%s current=%s -> %s",
		sig.TraceID, instrument, sig.Desired, describePosition(current), action)

	if action == decision.ActionNone {
		return out, nil
	}

	var result fill
	switch action {
	case decision.ActionClose:
		result, err = t.closePosition(ctx, instrument, current)
	case decision.ActionOpenLong, decision.ActionOpenShort:
		result, err = t.openSized(ctx, instrument, action.OpensLong(), leverage, state)
	case decision.ActionReverseToLong, decision.ActionReverseToShort:
		if result, err = t.closePosition(ctx, instrument, current); err == nil {
			// re-read balance: the close just freed the position's margin
			if state, err = t.venue.AccountState(ctx); err != nil {
				err = &TransportError{Op: "account state", Err: err}
			} else {
				result, err = t.openSized(ctx, instrument, action.OpensLong(), leverage, state)
			}
		}
	}
	if err != nil {
		t.fail(sig, instrument, err)
		return out, err
	}

	out.FilledSize = result.Size
	out.FillPrice = result.AvgPrice
	logger.Infof("signal %s: %s %s filled %.4f @ %.4f in %d attempt(s)",
		sig.TraceID, action, instrument, result.Size, result.AvgPrice, result.Attempts)
	if t.events != nil {
		t.events.Trade(notifier.TradeEvent{
			TraceID:    sig.TraceID,
			Instrument: instrument,
			Strategy:   sig.Strategy,
			Desired:    string(sig.Desired),
			Action:     action.String(),
			FilledSize: result.Size,
			FillPrice:  result.AvgPrice,
			Leverage:   leverage,
			At:         t.now(),
		})
	}
	return out, nil
}

// closePosition exits the full size of an existing position. The exit order
// is on the opposite side of the holding and always reduce-only.
func (t *Trader) closePosition(ctx context.Context, instrument string, pos *exchange.Position) (fill, error) {
	buyToClose := pos.Side == exchange.SideShort
	return t.exec.close(ctx, instrument, buyToClose, pos.Size)
}

// openSized derives the quantity from spare balance, leverage and the
// current mid, then opens. The leverage call inside open happens before any
// order is placed.
func (t *Trader) openSized(ctx context.Context, instrument string, long bool, leverage float64, state exchange.AccountState) (fill, error) {
	mid, err := t.venue.MidPrice(ctx, instrument)
	if err != nil {
		return fill{}, &TransportError{Op: "mid quote", Err: err}
	}
	size, err := Size(state.Withdrawable(), leverage, mid)
	if err != nil {
		return fill{}, err
	}
	return t.exec.open(ctx, instrument, long, size, leverage, !t.cfg.IsolatedMargin)
}

func (t *Trader) fail(sig decision.Signal, instrument string, err error) {
	logger.Errorf("signal %s: %s reconciliation failed: %v", sig.TraceID, instrument, err)
	if t.events == nil {
		return
	}
	t.events.Error(notifier.ErrorEvent{
		TraceID:    sig.TraceID,
		Instrument: instrument,
		Strategy:   sig.Strategy,
		Exchange:   t.venue.Name(),
		Message:    err.Error(),
		At:         t.now(),
	})
}

func describePosition(p *exchange.Position) string {
	if p == nil {
		return "flat"
	}
	return string(p.Side)
}
