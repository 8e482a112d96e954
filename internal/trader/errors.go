package trader

import "fmt"

// SizingError reports a non-positive balance or price reaching the sizing
// calculator. The reconciliation aborts immediately; nothing was submitted.
type SizingError struct {
	Reason string
}

func (e *SizingError) Error() string {
	return "sizing failed: " + e.Reason
}

// LeverageError reports a failed leverage-configuration call. Fatal for the
// reconciliation with no retry: the subsequent size math would assume a
// leverage the venue never acknowledged.
type LeverageError struct {
	Instrument string
	Err        error
}

func (e *LeverageError) Error() string {
	return fmt.Sprintf("leverage update failed for %s: %v", e.Instrument, e.Err)
}

func (e *LeverageError) Unwrap() error { return e.Err }

// TransportError reports a failed exchange call (network, HTTP status,
// unparseable body). Op names the call that failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("exchange %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FillTimeoutError reports that every placement attempt ended without a
// full fill. Partial state from earlier attempts is not rolled back.
type FillTimeoutError struct {
	Kind       string // "open" or "close"
	Instrument string
	Attempts   int
	Err        error // last transport error, if any
}

func (e *FillTimeoutError) Error() string {
	msg := fmt.Sprintf("%s %s not filled after %d attempts", e.Kind, e.Instrument, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FillTimeoutError) Unwrap() error { return e.Err }
