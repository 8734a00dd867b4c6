// Package retrydispatch is the background poller driving the vault's
// bounce/retry machinery, modeled on the teacher's txlistener.TxListener:
// a small functional-options-configured type wrapping a goroutine that
// polls on an interval until stopped or its context is cancelled.
package retrydispatch

import (
	"context"
	"time"
)

// Redispatcher is satisfied by *vault.Vault; kept as an interface here so
// this package does not import the vault package directly.
type Redispatcher interface {
	RedispatchDue() int
}

// Dispatcher polls a Redispatcher on PollInterval, re-sending any mint/burn
// call whose backoff window has elapsed.
type Dispatcher struct {
	target       Redispatcher
	pollInterval time.Duration
	timeout      time.Duration
}

// Option configures a Dispatcher at construction.
type Option func(*Dispatcher)

// WithPollInterval sets how often the dispatcher scans for due retries.
// Default is 5 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.pollInterval = d }
}

// WithTimeout bounds how long a single Run call may block overall before
// returning, regardless of ctx. Zero means no bound (run until ctx is
// cancelled).
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// NewDispatcher constructs a Dispatcher targeting target, applying opts in
// order over the defaults.
func NewDispatcher(target Redispatcher, opts ...Option) *Dispatcher {
	disp := &Dispatcher{
		target:       target,
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(disp)
	}
	return disp
}

// Run blocks, polling target.RedispatchDue on PollInterval, until ctx is
// cancelled or Timeout elapses (if set). It is meant to be started as a
// goroutine, the same way the teacher starts RunStrategy1 from cmd/main.go.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.target.RedispatchDue()
		}
	}
}
