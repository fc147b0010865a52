package driver

import (
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
)

// testTimeouts shrinks every budget so failing waits expire quickly
func testTimeouts() Timeouts {
	return Timeouts{
		Element:      150 * time.Millisecond,
		Strategy:     40 * time.Millisecond,
		NetworkQuiet: 100 * time.Millisecond,
		Busy:         100 * time.Millisecond,
		DropdownOpen: 100 * time.Millisecond,
		Assert:       150 * time.Millisecond,
		Poll:         5 * time.Millisecond,
		TypeDelay:    time.Millisecond,
		KeyDelay:     time.Millisecond,
		RetryWait:    5 * time.Millisecond,
	}
}

func newTestDriver(session *browser.MemorySession) *Driver {
	return New(session, zap.NewNop(), WithTimeouts(testTimeouts()))
}

// recorder collects driver events for behavioural assertions
type recorder struct {
	events []Event
}

func (r *recorder) hook() func(Event) {
	return func(ev Event) { r.events = append(r.events, ev) }
}

func (r *recorder) byKind(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) details(kind EventKind) []string {
	var out []string
	for _, ev := range r.byKind(kind) {
		out = append(out, ev.Detail)
	}
	return out
}
