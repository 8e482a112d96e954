// Package exchange defines a common abstraction over perpetuals venues so the
// reconciliation core never talks to a concrete API directly.
package exchange

import (
	"strings"
	"time"
)

// Side of a held position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is an immutable snapshot of one open perp position. Size is always
// positive; direction lives in Side. A zero-size holding is never represented
// as a Position; readers normalize it to absence.
type Position struct {
	Instrument    string
	Side          Side
	Size          float64 // absolute contracts, > 0
	EntryPrice    float64
	UnrealizedPnL float64
	Leverage      float64
	UpdatedAt     time.Time
}

// AccountState is the margin summary returned by the venue for one account.
type AccountState struct {
	AccountValue float64
	MarginUsed   float64
	Positions    []Position
	UpdatedAt    time.Time
}

// Withdrawable returns the spare tradable balance: account value minus the
// margin currently locked by open positions.
func (s AccountState) Withdrawable() float64 {
	free := s.AccountValue - s.MarginUsed
	if free < 0 {
		return 0
	}
	return free
}

// PositionFor returns the open position on one instrument, or nil when the
// account is flat there. Zero- and dust-size holdings count as flat.
func (s AccountState) PositionFor(instrument string) *Position {
	instrument = strings.ToUpper(strings.TrimSpace(instrument))
	for i := range s.Positions {
		p := &s.Positions[i]
		if strings.ToUpper(p.Instrument) != instrument {
			continue
		}
		if p.Size <= 0 {
			return nil
		}
		cp := *p
		return &cp
	}
	return nil
}

// TimeInForce for order submission. The executor only ever uses IOC so a
// partially marketable limit order cannot rest on the book.
type TimeInForce string

const (
	TifIoc TimeInForce = "Ioc"
	TifGtc TimeInForce = "Gtc"
)

// OrderRequest describes one order submission.
type OrderRequest struct {
	Instrument  string
	IsBuy       bool
	Size        float64 // contracts, > 0
	LimitPrice  float64 // current market price, emulating a market order
	TimeInForce TimeInForce
	ReduceOnly  bool // true only when closing
}

// LegStatus is one component of a (possibly multi-part) order acknowledgement.
type LegStatus struct {
	Filled   bool
	Status   string  // venue status string, e.g. "filled", "resting", "error"
	AvgPrice float64 // average fill price when filled
	FillSize float64 // filled contracts when filled
	Error    string  // venue error text when Status == "error"
}

// OrderOutcome is the result of one placement attempt.
type OrderOutcome struct {
	Legs []LegStatus
	Raw  string // raw response body, kept for logging
}

// FullyFilled reports whether every leg reached a filled state. An outcome
// with no legs is treated as unfilled: the venue acknowledged the request but
// returned no usable status.
func (o OrderOutcome) FullyFilled() bool {
	if len(o.Legs) == 0 {
		return false
	}
	for _, leg := range o.Legs {
		if !leg.Filled {
			return false
		}
	}
	return true
}

// AvgFillPrice returns the size-weighted average fill price across legs,
// falling back to 0 when nothing filled.
func (o OrderOutcome) AvgFillPrice() float64 {
	var notional, size float64
	for _, leg := range o.Legs {
		if !leg.Filled || leg.FillSize <= 0 {
			continue
		}
		notional += leg.AvgPrice * leg.FillSize
		size += leg.FillSize
	}
	if size <= 0 {
		return 0
	}
	return notional / size
}
