package notifier

import (
	"sync"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
)

const dispatchBuffer = 64

// Dispatcher decouples event emission from delivery: reconciliations publish
// onto a buffered channel and a single background worker drains it to the
// TextNotifier. Publishing never blocks and never fails the caller; a full
// buffer drops the event with a warning.
type Dispatcher struct {
	sink   TextNotifier
	events chan string

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(sink TextNotifier) *Dispatcher {
	if sink == nil {
		sink = Noop{}
	}
	d := &Dispatcher{
		sink:   sink,
		events: make(chan string, dispatchBuffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for text := range d.events {
		if err := d.sink.SendText(text); err != nil {
			logger.Warnf("notifier: delivery failed: %v", err)
		}
	}
}

// Trade publishes a successful-trade event.
func (d *Dispatcher) Trade(evt TradeEvent) {
	d.publish(evt.render())
}

// Error publishes a failed-reconciliation event.
func (d *Dispatcher) Error(evt ErrorEvent) {
	d.publish(evt.render())
}

// publish is safe to call at any point in the lifecycle: a publish racing
// shutdown drops the event instead of panicking on the closed channel. A
// reconciliation can still be finishing its retry sleeps when Run tears the
// app down.
func (d *Dispatcher) publish(text string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		logger.Warnf("notifier: dispatcher closed, event dropped")
		return
	}
	select {
	case d.events <- text:
	default:
		logger.Warnf("notifier: buffer full, event dropped")
	}
}

// Close stops the worker after draining queued events. Idempotent; later
// publishes become no-ops.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	alreadyClosed := d.closed
	d.closed = true
	if !alreadyClosed {
		close(d.events)
	}
	d.mu.Unlock()
	<-d.done
}
