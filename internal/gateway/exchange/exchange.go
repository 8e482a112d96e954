package exchange

import "context"

// Exchange is the capability set the reconciliation core consumes. Concrete
// implementations live under gateway/<venue>; the trader only depends on this
// interface so tests can substitute a scripted fake.
type Exchange interface {
	Name() string

	// AccountState returns the caller's margin summary plus every open perp
	// position. Fetched fresh at the start of each reconciliation, never cached.
	AccountState(ctx context.Context) (AccountState, error)

	// MidPrice returns the current mid price of one instrument.
	MidPrice(ctx context.Context, instrument string) (float64, error)

	// SetLeverage configures leverage and margin mode for an instrument.
	// Must be acknowledged before any open order is placed.
	SetLeverage(ctx context.Context, instrument string, leverage float64, cross bool) error

	// PlaceOrder submits one order and reports per-leg fill statuses.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderOutcome, error)
}
