package trader

import (
	"context"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
)

// fill is the confirmed result of a placement loop.
type fill struct {
	Size     float64
	AvgPrice float64
	Attempts int
}

// executor owns the order placement loops. Each attempt re-quotes the mid
// and submits an IOC limit at it, so a moved market gets a fresh price on
// the next try instead of chasing a stale one.
type executor struct {
	venue  exchange.Exchange
	policy retryPolicy
}

func newExecutor(venue exchange.Exchange) *executor {
	return &executor{venue: venue, policy: defaultRetryPolicy()}
}

// open configures leverage, then places a sized entry order with bounded
// retries. A failed leverage call aborts before anything is submitted.
func (e *executor) open(ctx context.Context, instrument string, isBuy bool, size, leverage float64, cross bool) (fill, error) {
	if err := e.venue.SetLeverage(ctx, instrument, leverage, cross); err != nil {
		return fill{}, &LeverageError{Instrument: instrument, Err: err}
	}
	return e.place(ctx, "open", instrument, isBuy, size, false)
}

// close places a reduce-only exit for the full position size.
func (e *executor) close(ctx context.Context, instrument string, isBuy bool, size float64) (fill, error) {
	return e.place(ctx, "close", instrument, isBuy, size, true)
}

func (e *executor) place(ctx context.Context, kind, instrument string, isBuy bool, size float64, reduceOnly bool) (fill, error) {
	var got fill
	attempts, lastErr, filled := e.policy.run(ctx, func(ctx context.Context, attempt int) (attemptOutcome, error) {
		mid, err := e.venue.MidPrice(ctx, instrument)
		if err != nil {
			logger.Warnf("%s %s attempt %d: mid quote failed: %v", kind, instrument, attempt, err)
			return attemptSoftFail, &TransportError{Op: "mid quote", Err: err}
		}
		price := mid
		if !reduceOnly {
			price = roundOpenPrice(mid)
		}
		outcome, err := e.venue.PlaceOrder(ctx, exchange.OrderRequest{
			Instrument:  instrument,
			IsBuy:       isBuy,
			Size:        size,
			LimitPrice:  price,
			TimeInForce: exchange.TifIoc,
			ReduceOnly:  reduceOnly,
		})
		if err != nil {
			logger.Warnf("%s %s attempt %d: submit failed: %v", kind, instrument, attempt, err)
			return attemptSoftFail, &TransportError{Op: "order submit", Err: err}
		}
		if len(outcome.Legs) == 0 {
			logger.Warnf("%s %s attempt %d: order acknowledged but status unreadable", kind, instrument, attempt)
			return attemptSoftFail, nil
		}
		if !outcome.FullyFilled() {
			logger.Infof("%s %s attempt %d: not filled at %v, will requote", kind, instrument, attempt, price)
			return attemptUnfilled, nil
		}
		got = fill{Size: size, AvgPrice: outcome.AvgFillPrice(), Attempts: attempt}
		return attemptFilled, nil
	})
	if !filled {
		return fill{}, &FillTimeoutError{Kind: kind, Instrument: instrument, Attempts: attempts, Err: lastErr}
	}
	got.Attempts = attempts
	return got, nil
}
