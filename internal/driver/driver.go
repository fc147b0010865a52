// Package driver implements the resilient interaction core: wait primitives,
// selector-chain resolution, and composable interaction verbs. Page objects
// are thin compositions over this package and carry no retry logic of their
// own.
package driver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/observability"
)

// Timeouts is the per-operation budget table. Every suspension point is
// bounded by one of these; nothing waits unboundedly.
type Timeouts struct {
	Element      time.Duration // waitVisible/waitHidden default budget
	Strategy     time.Duration // per-strategy budget inside Resolve
	NetworkQuiet time.Duration
	Busy         time.Duration // busy-flag clearance, best-effort
	DropdownOpen time.Duration
	Assert       time.Duration
	Poll         time.Duration // polling interval for all waits
	TypeDelay    time.Duration // inter-key delay for typed fills
	KeyDelay     time.Duration // delay between navigation key presses
	RetryWait    time.Duration // fixed backoff between click retries
}

// DefaultTimeouts returns the budget table used when config supplies none
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Element:      10 * time.Second,
		Strategy:     2 * time.Second,
		NetworkQuiet: 15 * time.Second,
		Busy:         8 * time.Second,
		DropdownOpen: 3 * time.Second,
		Assert:       10 * time.Second,
		Poll:         100 * time.Millisecond,
		TypeDelay:    50 * time.Millisecond,
		KeyDelay:     150 * time.Millisecond,
		RetryWait:    500 * time.Millisecond,
	}
}

// EventKind identifies an observable driver event
type EventKind string

const (
	EventStrategyAttempt EventKind = "strategy_attempt"
	EventStrategyHit     EventKind = "strategy_hit"
	EventClickAttempt    EventKind = "click_attempt"
	EventRetry           EventKind = "retry"
	EventInteraction     EventKind = "interaction"
)

// Event is emitted at interaction and resolution checkpoints; the hook
// backs both metrics and the behavioural tests.
type Event struct {
	Kind   EventKind
	Target string
	Detail string
}

// Driver binds the interaction core to one browser session
type Driver struct {
	session  browser.Session
	logger   *zap.Logger
	metrics  *observability.Metrics
	timeouts Timeouts

	// busySelector matches the application-toggled loading indicator.
	busySelector string

	// OnEvent, when set, observes strategy attempts and interaction
	// checkpoints. Used by tests; metrics are recorded regardless.
	OnEvent func(Event)
}

// Option configures a Driver
type Option func(*Driver)

// WithTimeouts overrides the default budget table
func WithTimeouts(t Timeouts) Option {
	return func(d *Driver) { d.timeouts = t }
}

// WithMetrics attaches Prometheus instruments
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithBusySelector sets the application-specific loading indicator selector
func WithBusySelector(selector string) Option {
	return func(d *Driver) { d.busySelector = selector }
}

// New creates a Driver over session
func New(session browser.Session, logger *zap.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	d := &Driver{
		session:      session,
		logger:       logger,
		timeouts:     DefaultTimeouts(),
		busySelector: ".busy-indicator, .loading-overlay",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Session exposes the underlying session for diagnostics capture
func (d *Driver) Session() browser.Session {
	return d.session
}

// Timeouts returns the active budget table
func (d *Driver) Timeouts() Timeouts {
	return d.timeouts
}

func (d *Driver) emit(ev Event) {
	if d.OnEvent != nil {
		d.OnEvent(ev)
	}
}

// Goto navigates and settles: network quiescence plus busy-flag clearance.
// Neither signal alone is trusted; callers always follow with a concrete
// assertion (element visible or URL match).
func (d *Driver) Goto(ctx context.Context, url string) error {
	if err := d.session.Navigate(ctx, url); err != nil {
		return err
	}
	return d.Settle(ctx)
}

// Settle waits for the coarse "page is ready" signals. Both are heuristics:
// failures are logged and tolerated, and the caller's next assertion is the
// real completion check.
func (d *Driver) Settle(ctx context.Context) error {
	if err := d.WaitNetworkQuiet(ctx, d.timeouts.NetworkQuiet); err != nil {
		d.logger.Warn("network did not quiet",
			zap.String("url", d.session.URL()),
			zap.Error(err))
	}
	d.WaitLoadingCleared(ctx, d.timeouts.Busy)
	return ctx.Err()
}

// sleep waits for dur or until ctx is done
func sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
