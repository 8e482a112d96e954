package trader

import (
	"context"
	"time"
)

// attemptOutcome classifies one placement attempt for backoff selection.
type attemptOutcome int

const (
	// attemptFilled ends the loop successfully.
	attemptFilled attemptOutcome = iota
	// attemptUnfilled means the venue returned a readable status that was
	// not a full fill; waits the longer backoff before retrying.
	attemptUnfilled
	// attemptSoftFail means a transport error or an acknowledged submission
	// with no readable status; waits the shorter backoff. Retrying here can
	// double-fill if the order actually executed; the venue owns idempotence.
	attemptSoftFail
)

type attemptFunc func(ctx context.Context, attempt int) (attemptOutcome, error)

// retryPolicy is the bounded-retry combinator shared by open and close:
// run fn up to MaxAttempts times, sleeping UnfilledWait or SoftFailWait
// between attempts depending on how the previous one ended. Sleep is
// injectable so tests can count simulated backoff instead of waiting.
type retryPolicy struct {
	MaxAttempts  int
	UnfilledWait time.Duration
	SoftFailWait time.Duration
	Sleep        func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts:  3,
		UnfilledWait: 3 * time.Second,
		SoftFailWait: time.Second,
		Sleep:        time.Sleep,
	}
}

// run drives the attempt loop. Returns (attempts used, last transport
// error, filled). Never exceeds MaxAttempts; a fill short-circuits.
func (p retryPolicy) run(ctx context.Context, fn attemptFunc) (int, error, bool) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		outcome, err := fn(ctx, attempt)
		if outcome == attemptFilled {
			return attempt, nil, true
		}
		lastErr = err
		if attempt == p.MaxAttempts {
			return attempt, lastErr, false
		}
		if outcome == attemptUnfilled {
			sleep(p.UnfilledWait)
		} else {
			sleep(p.SoftFailWait)
		}
	}
	return p.MaxAttempts, lastErr, false
}
