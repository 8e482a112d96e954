package trader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/decision"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/notifier"
)

type leverageCall struct {
	instrument string
	leverage   float64
	cross      bool
}

// fakeVenue scripts exchange responses and records the call sequence.
type fakeVenue struct {
	states   []exchange.AccountState
	stateErr error
	stateN   int

	mid    float64
	midErr error

	levErr   error
	levCalls []leverageCall

	orders    []exchange.OrderRequest
	results   []exchange.OrderOutcome
	orderErrs []error

	calls []string
}

func (f *fakeVenue) Name() string { return "hyperliquid" }

func (f *fakeVenue) AccountState(context.Context) (exchange.AccountState, error) {
	f.calls = append(f.calls, "state")
	if f.stateErr != nil {
		return exchange.AccountState{}, f.stateErr
	}
	i := f.stateN
	if i >= len(f.states) {
		i = len(f.states) - 1
	}
	f.stateN++
	return f.states[i], nil
}

func (f *fakeVenue) MidPrice(context.Context, string) (float64, error) {
	return f.mid, f.midErr
}

func (f *fakeVenue) SetLeverage(_ context.Context, instrument string, leverage float64, cross bool) error {
	f.calls = append(f.calls, "leverage")
	f.levCalls = append(f.levCalls, leverageCall{instrument, leverage, cross})
	return f.levErr
}

func (f *fakeVenue) PlaceOrder(_ context.Context, req exchange.OrderRequest) (exchange.OrderOutcome, error) {
	f.calls = append(f.calls, "order")
	i := len(f.orders)
	f.orders = append(f.orders, req)
	if i < len(f.orderErrs) && f.orderErrs[i] != nil {
		return exchange.OrderOutcome{}, f.orderErrs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return filledOutcome(req), nil
}

func filledOutcome(req exchange.OrderRequest) exchange.OrderOutcome {
	return exchange.OrderOutcome{Legs: []exchange.LegStatus{{
		Filled:   true,
		Status:   "filled",
		AvgPrice: req.LimitPrice,
		FillSize: req.Size,
	}}}
}

func restingOutcome() exchange.OrderOutcome {
	return exchange.OrderOutcome{Legs: []exchange.LegStatus{{Status: "resting"}}}
}

func flatState(value, used float64) exchange.AccountState {
	return exchange.AccountState{AccountValue: value, MarginUsed: used}
}

func shortState(value, used, size float64) exchange.AccountState {
	s := flatState(value, used)
	s.Positions = []exchange.Position{{
		Instrument: "BTCUSD-PERP",
		Side:       exchange.SideShort,
		Size:       size,
		EntryPrice: 48000,
	}}
	return s
}

type captureSink struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSink) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func (c *captureSink) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func newTestTrader(v exchange.Exchange, d *notifier.Dispatcher) (*Trader, *[]time.Duration) {
	tr := New(v, d, config.TradingConfig{
		ExpectedExchange: "hyperliquid",
		InstrumentSuffix: "-PERP",
		DefaultLeverage:  2,
	})
	sleeps := &[]time.Duration{}
	tr.exec.policy.Sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return tr, sleeps
}

func shortSignal(lev float64) decision.Signal {
	return decision.Signal{
		TraceID:  "t-1",
		Exchange: "hyperliquid",
		Market:   "BTC_USD",
		Desired:  decision.DesiredShort,
		Leverage: lev,
		Strategy: "breakout-v2",
	}
}

func TestHandleOpenShort(t *testing.T) {
	venue := &fakeVenue{states: []exchange.AccountState{flatState(10000, 0)}, mid: 50000}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, _ := newTestTrader(venue, events)

	out, err := tr.Handle(context.Background(), shortSignal(2.5))
	require.NoError(t, err)
	events.Close()

	assert.Equal(t, decision.ActionOpenShort, out.Action)
	assert.Equal(t, "BTCUSD-PERP", out.Instrument)
	assert.Equal(t, 0.5, out.FilledSize)
	assert.Equal(t, 50000.0, out.FillPrice)

	// leverage is configured once, strictly before the order
	require.Equal(t, []string{"state", "leverage", "order"}, venue.calls)
	require.Len(t, venue.levCalls, 1)
	assert.Equal(t, leverageCall{"BTCUSD-PERP", 2.5, true}, venue.levCalls[0])

	require.Len(t, venue.orders, 1)
	ord := venue.orders[0]
	assert.False(t, ord.IsBuy)
	assert.Equal(t, 0.5, ord.Size)
	assert.Equal(t, 50000.0, ord.LimitPrice)
	assert.Equal(t, exchange.TifIoc, ord.TimeInForce)
	assert.False(t, ord.ReduceOnly)

	msgs := sink.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Trade executed")
	assert.Contains(t, msgs[0], "BTCUSD-PERP")
	assert.Contains(t, msgs[0], "breakout-v2")
}

func TestHandleNoopEmitsNothing(t *testing.T) {
	venue := &fakeVenue{states: []exchange.AccountState{shortState(10000, 600, 1.2)}, mid: 50000}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, _ := newTestTrader(venue, events)

	out, err := tr.Handle(context.Background(), shortSignal(2))
	require.NoError(t, err)
	events.Close()

	assert.Equal(t, decision.ActionNone, out.Action)
	assert.Equal(t, []string{"state"}, venue.calls)
	assert.Empty(t, sink.all())
}

func TestHandleSeesPositionForDifferentlyQuotedMarket(t *testing.T) {
	// the venue reports the position as BTCUSD-PERP; a BTC_USDT signal
	// must still resolve to it instead of opening a second exposure
	venue := &fakeVenue{states: []exchange.AccountState{shortState(10000, 600, 1.2)}, mid: 50000}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, _ := newTestTrader(venue, events)

	sig := shortSignal(2)
	sig.Market = "BTC_USDT"
	out, err := tr.Handle(context.Background(), sig)
	require.NoError(t, err)
	events.Close()

	assert.Equal(t, "BTCUSD-PERP", out.Instrument)
	assert.Equal(t, decision.ActionNone, out.Action)
	assert.Empty(t, venue.orders)
	assert.Empty(t, venue.levCalls)
	assert.Empty(t, sink.all())
}

func TestHandleReverseToLong(t *testing.T) {
	venue := &fakeVenue{
		states: []exchange.AccountState{
			shortState(10000, 600, 1.2),
			flatState(10000, 0), // margin freed by the close
		},
		mid: 50000,
	}
	events := notifier.NewDispatcher(&captureSink{})
	defer events.Close()
	tr, _ := newTestTrader(venue, events)

	sig := shortSignal(2.5)
	sig.Desired = decision.DesiredLong
	out, err := tr.Handle(context.Background(), sig)
	require.NoError(t, err)

	assert.Equal(t, decision.ActionReverseToLong, out.Action)
	require.Equal(t, []string{"state", "order", "state", "leverage", "order"}, venue.calls)

	require.Len(t, venue.orders, 2)
	closing, opening := venue.orders[0], venue.orders[1]
	assert.True(t, closing.IsBuy, "closing a short buys")
	assert.True(t, closing.ReduceOnly)
	assert.Equal(t, 1.2, closing.Size)
	assert.True(t, opening.IsBuy)
	assert.False(t, opening.ReduceOnly)
	assert.Equal(t, 0.5, opening.Size, "sized from the refreshed balance")
	assert.Equal(t, 0.5, out.FilledSize)
}

func TestHandleReverseAbortsWhenCloseUnfilled(t *testing.T) {
	venue := &fakeVenue{
		states:  []exchange.AccountState{shortState(10000, 600, 1.2)},
		mid:     50000,
		results: []exchange.OrderOutcome{restingOutcome(), restingOutcome(), restingOutcome()},
	}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, sleeps := newTestTrader(venue, events)

	sig := shortSignal(2)
	sig.Desired = decision.DesiredLong
	_, err := tr.Handle(context.Background(), sig)
	events.Close()

	var ferr *FillTimeoutError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "close", ferr.Kind)
	assert.Equal(t, 3, ferr.Attempts)

	// three close attempts, the open side never starts
	require.Len(t, venue.orders, 3)
	for _, ord := range venue.orders {
		assert.True(t, ord.ReduceOnly)
	}
	assert.Empty(t, venue.levCalls)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, *sleeps)

	msgs := sink.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Trade failed")
}

func TestHandleLeverageFailureIsFatal(t *testing.T) {
	venue := &fakeVenue{
		states: []exchange.AccountState{flatState(10000, 0)},
		mid:    50000,
		levErr: errors.New("venue rejected leverage"),
	}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, sleeps := newTestTrader(venue, events)

	_, err := tr.Handle(context.Background(), shortSignal(2))
	events.Close()

	var lerr *LeverageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "BTCUSD-PERP", lerr.Instrument)
	require.Len(t, venue.levCalls, 1, "leverage is never retried")
	assert.Empty(t, venue.orders)
	assert.Empty(t, *sleeps)
	require.Len(t, sink.all(), 1)
}

func TestHandleSizingFailureBeforeLeverage(t *testing.T) {
	venue := &fakeVenue{states: []exchange.AccountState{flatState(500, 500)}, mid: 50000}
	events := notifier.NewDispatcher(&captureSink{})
	defer events.Close()
	tr, _ := newTestTrader(venue, events)

	_, err := tr.Handle(context.Background(), shortSignal(2))
	var serr *SizingError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, venue.levCalls)
	assert.Empty(t, venue.orders)
}

func TestHandleFillsOnThirdAttemptAfterUnfilled(t *testing.T) {
	// two readable-but-unfilled responses, then a fill: succeeds on the
	// third submission with the long backoff before each retry
	venue := &fakeVenue{
		states:  []exchange.AccountState{flatState(10000, 0)},
		mid:     50000,
		results: []exchange.OrderOutcome{restingOutcome(), restingOutcome()},
	}
	events := notifier.NewDispatcher(&captureSink{})
	defer events.Close()
	tr, sleeps := newTestTrader(venue, events)

	out, err := tr.Handle(context.Background(), shortSignal(2.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.FilledSize)
	require.Len(t, venue.orders, 3)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, *sleeps)
}

func TestHandleRetriesMixedFailures(t *testing.T) {
	// attempt 1: transport error (short wait), attempt 2: unfilled (long
	// wait), attempt 3: filled.
	venue := &fakeVenue{
		states:    []exchange.AccountState{flatState(10000, 0)},
		mid:       50000,
		orderErrs: []error{errors.New("connection reset")},
		results:   []exchange.OrderOutcome{{}, restingOutcome()},
	}
	events := notifier.NewDispatcher(&captureSink{})
	defer events.Close()
	tr, sleeps := newTestTrader(venue, events)

	out, err := tr.Handle(context.Background(), shortSignal(2))
	require.NoError(t, err)
	assert.Equal(t, 0.4, out.FilledSize)
	require.Len(t, venue.orders, 3)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, *sleeps)
}

func TestHandleAccountStateFailure(t *testing.T) {
	venue := &fakeVenue{stateErr: errors.New("502 bad gateway")}
	sink := &captureSink{}
	events := notifier.NewDispatcher(sink)
	tr, _ := newTestTrader(venue, events)

	_, err := tr.Handle(context.Background(), shortSignal(2))
	events.Close()

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, strings.Contains(terr.Error(), "account state"))
	require.Len(t, sink.all(), 1)
}

func TestHandleDefaultLeverageWhenSignalOmitsIt(t *testing.T) {
	venue := &fakeVenue{states: []exchange.AccountState{flatState(10000, 0)}, mid: 50000}
	events := notifier.NewDispatcher(&captureSink{})
	defer events.Close()
	tr, _ := newTestTrader(venue, events)

	out, err := tr.Handle(context.Background(), shortSignal(0))
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Leverage)
	require.Len(t, venue.levCalls, 1)
	assert.Equal(t, 2.0, venue.levCalls[0].leverage)
}
