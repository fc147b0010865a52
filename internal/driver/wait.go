package driver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/domain"
)

// WaitVisible polls until target resolves to a visible element, re-resolving
// from the logical target on every poll. Fails with NotFound if the timeout
// elapses.
func (d *Driver) WaitVisible(ctx context.Context, t Target, timeout time.Duration) (browser.Element, error) {
	if timeout <= 0 {
		timeout = d.timeouts.Element
	}
	deadline := time.Now().Add(timeout)
	for {
		if el, ok := d.resolveOnce(t); ok {
			return el, nil
		}
		if time.Now().After(deadline) {
			d.waitTimedOut("visible")
			return nil, domain.NotFoundError(t.String(), len(t.Strategies()))
		}
		if err := sleep(ctx, d.timeouts.Poll); err != nil {
			return nil, domain.TimeoutError("visible: "+t.String(), timeout)
		}
	}
}

// WaitHidden polls until no strategy yields a visible match, for dismissing
// transient overlays and popups.
func (d *Driver) WaitHidden(ctx context.Context, t Target, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = d.timeouts.Element
	}
	deadline := time.Now().Add(timeout)
	for {
		if _, ok := d.resolveOnce(t); !ok {
			return nil
		}
		if time.Now().After(deadline) {
			d.waitTimedOut("hidden")
			return domain.TimeoutError("hidden: "+t.String(), timeout)
		}
		if err := sleep(ctx, d.timeouts.Poll); err != nil {
			return domain.TimeoutError("hidden: "+t.String(), timeout)
		}
	}
}

// WaitNetworkQuiet waits for a trailing window of network silence. It is a
// coarse "page settled" signal only; async rendering can finish after the
// network quiets, so callers pair it with a concrete assertion.
func (d *Driver) WaitNetworkQuiet(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = d.timeouts.NetworkQuiet
	}
	if err := d.session.WaitNetworkIdle(timeout); err != nil {
		d.waitTimedOut("network_quiet")
		return domain.TimeoutError("network quiet", timeout)
	}
	return ctx.Err()
}

// WaitLoadingCleared polls the application's busy flag until absent. The
// flag can flicker or never appear for fast operations, so clearance is
// best-effort: a timeout is logged and swallowed, never fatal.
func (d *Driver) WaitLoadingCleared(ctx context.Context, timeout time.Duration) {
	if timeout <= 0 {
		timeout = d.timeouts.Busy
	}
	deadline := time.Now().Add(timeout)
	for {
		n, err := d.session.Count(d.busySelector)
		if err == nil && n == 0 {
			return
		}
		if err == nil && n > 0 {
			if el, ferr := d.session.Find(d.busySelector); ferr == nil {
				if visible, verr := el.IsVisible(); verr == nil && !visible {
					return
				}
			}
		}
		if time.Now().After(deadline) {
			d.waitTimedOut("busy_flag")
			d.logger.Warn("busy indicator did not clear, continuing",
				zap.String("selector", d.busySelector),
				zap.Duration("timeout", timeout))
			return
		}
		if sleep(ctx, d.timeouts.Poll) != nil {
			return
		}
	}
}

// URLMatcher is a predicate over the current location
type URLMatcher struct {
	desc string
	fn   func(string) bool
}

// URLExact matches the location exactly
func URLExact(url string) URLMatcher {
	return URLMatcher{desc: fmt.Sprintf("url == %q", url), fn: func(u string) bool { return u == url }}
}

// URLPrefix matches any location starting with prefix
func URLPrefix(prefix string) URLMatcher {
	return URLMatcher{desc: fmt.Sprintf("url prefix %q", prefix), fn: func(u string) bool { return strings.HasPrefix(u, prefix) }}
}

// URLContains matches any location containing fragment
func URLContains(fragment string) URLMatcher {
	return URLMatcher{desc: fmt.Sprintf("url contains %q", fragment), fn: func(u string) bool { return strings.Contains(u, fragment) }}
}

// URLRegexp matches the location against re
func URLRegexp(re *regexp.Regexp) URLMatcher {
	return URLMatcher{desc: fmt.Sprintf("url matches %s", re), fn: re.MatchString}
}

// URLFunc wraps an arbitrary predicate with a description for diagnostics
func URLFunc(desc string, fn func(string) bool) URLMatcher {
	return URLMatcher{desc: desc, fn: fn}
}

// Describe returns the matcher's condition description
func (m URLMatcher) Describe() string {
	return m.desc
}

// Match applies the predicate
func (m URLMatcher) Match(url string) bool {
	return m.fn(url)
}

// WaitURL polls the current location until the matcher holds. This is the
// primary page-transition completion signal: navigation changes are atomic
// and observable, unlike busy-flag timing.
func (d *Driver) WaitURL(ctx context.Context, m URLMatcher, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = d.timeouts.Element
	}
	deadline := time.Now().Add(timeout)
	for {
		current := d.session.URL()
		if m.Match(current) {
			return nil
		}
		if time.Now().After(deadline) {
			d.waitTimedOut("url")
			return domain.TimeoutError(fmt.Sprintf("%s (last %q)", m.Describe(), current), timeout)
		}
		if err := sleep(ctx, d.timeouts.Poll); err != nil {
			return domain.TimeoutError(m.Describe(), timeout)
		}
	}
}

// waitTimedOut records a coarse condition kind; full descriptions live in
// the returned errors, not in label values.
func (d *Driver) waitTimedOut(condition string) {
	if d.metrics != nil {
		d.metrics.WaitTimeouts.WithLabelValues(condition).Inc()
	}
}
