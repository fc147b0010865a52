// Package browser defines the capability surface the driving core consumes.
// The core never depends on a specific automation engine beyond these two
// interfaces; internal/driver builds all waiting, resolution and retry logic
// on top of them.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNoMatch is returned by Find when a selector matches nothing.
var ErrNoMatch = errors.New("no matching element")

// Session is one logical browser tab. All methods are single-threaded:
// concurrent calls against one session are a caller error.
type Session interface {
	// Navigate loads url and waits for the document to be parsed.
	Navigate(ctx context.Context, url string) error

	// URL returns the current location. Navigation changes are atomic and
	// observable, which makes this the most reliable page-transition signal.
	URL() string

	Title() (string, error)

	// Content returns the current page markup.
	Content() (string, error)

	// Screenshot captures the page as PNG bytes.
	Screenshot(fullPage bool) ([]byte, error)

	// AccessibilityTree returns a structured-text snapshot of the page's
	// accessibility tree.
	AccessibilityTree() (string, error)

	// Evaluate runs a script in the page and returns its value.
	Evaluate(script string) (any, error)

	// Find returns the first element matching selector, or ErrNoMatch.
	// Strategies are expected to be specific enough to match at most one
	// element; callers re-resolve rather than cache the handle.
	Find(selector string) (Element, error)

	// Count returns how many elements match selector.
	Count(selector string) (int, error)

	// WaitNetworkIdle blocks until no network activity has been observed
	// for a trailing silence window, or the timeout elapses.
	WaitNetworkIdle(timeout time.Duration) error

	// Viewport returns the configured viewport size.
	Viewport() (width, height int)

	Close() error
}

// Element is a handle to one located element. Handles go stale across
// navigations and DOM-mutating operations, so callers hold them only for
// the duration of a single interaction.
type Element interface {
	Click() error
	Fill(value string) error
	Press(key string) error
	Focus() error
	InnerText() (string, error)
	GetAttribute(name string) (string, error)
	IsVisible() (bool, error)
}
