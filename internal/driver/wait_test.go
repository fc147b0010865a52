package driver

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/domain"
)

func TestWaitVisible_AppearsLate(t *testing.T) {
	session := browser.NewMemorySession()
	drv := newTestDriver(session)

	// Hidden for the first three visibility checks, then visible.
	session.Install(&browser.MemoryElement{VisibleAfter: 3}, `[data-test="overlay"]`)

	el, err := drv.WaitVisible(context.Background(),
		Attribute("data-test", "overlay"), 500*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, el)
}

func TestWaitVisible_TimeoutIsNotFound(t *testing.T) {
	session := browser.NewMemorySession()
	drv := newTestDriver(session)

	start := time.Now()
	_, err := drv.WaitVisible(context.Background(), Text("never appears"), 60*time.Millisecond)

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Less(t, time.Since(start), time.Second, "wait must honor its budget")
}

func TestWaitHidden(t *testing.T) {
	session := browser.NewMemorySession()
	drv := newTestDriver(session)

	popup := session.Install(&browser.MemoryElement{Visible: true}, ".confirm-popup")

	t.Run("element goes hidden", func(t *testing.T) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			popup.SetVisible(false)
		}()
		err := drv.WaitHidden(context.Background(), Selector(".confirm-popup"), 500*time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("element stays visible", func(t *testing.T) {
		popup.SetVisible(true)
		err := drv.WaitHidden(context.Background(), Selector(".confirm-popup"), 50*time.Millisecond)
		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err))
	})

	t.Run("absent element is already hidden", func(t *testing.T) {
		err := drv.WaitHidden(context.Background(), Selector(".never-existed"), 50*time.Millisecond)
		require.NoError(t, err)
	})
}

func TestWaitNetworkQuiet(t *testing.T) {
	session := browser.NewMemorySession()
	drv := newTestDriver(session)

	require.NoError(t, drv.WaitNetworkQuiet(context.Background(), 50*time.Millisecond))
	assert.Equal(t, 1, session.NetworkIdleCalls)

	session.NetworkIdleErr = errors.New("still busy")
	err := drv.WaitNetworkQuiet(context.Background(), 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, domain.IsTimeout(err))
}

func TestWaitLoadingCleared_BestEffort(t *testing.T) {
	session := browser.NewMemorySession()
	drv := New(session, nil,
		WithTimeouts(testTimeouts()),
		WithBusySelector(".gw-loading"))

	t.Run("clears when flag disappears", func(t *testing.T) {
		busy := session.Install(&browser.MemoryElement{Visible: true}, ".gw-loading")
		go func() {
			time.Sleep(20 * time.Millisecond)
			busy.SetVisible(false)
		}()
		done := make(chan struct{})
		go func() {
			drv.WaitLoadingCleared(context.Background(), 500*time.Millisecond)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("WaitLoadingCleared did not return")
		}
	})

	t.Run("timeout is swallowed", func(t *testing.T) {
		session.Install(&browser.MemoryElement{Visible: true}, ".gw-loading")
		// Returns normally even though the flag never cleared.
		drv.WaitLoadingCleared(context.Background(), 30*time.Millisecond)
	})
}

func TestWaitURL(t *testing.T) {
	session := browser.NewMemorySession()
	session.CurrentURL = "https://app.example.com/login"
	drv := newTestDriver(session)
	ctx := context.Background()

	t.Run("exact", func(t *testing.T) {
		require.NoError(t, drv.WaitURL(ctx, URLExact("https://app.example.com/login"), 50*time.Millisecond))
	})

	t.Run("prefix", func(t *testing.T) {
		require.NoError(t, drv.WaitURL(ctx, URLPrefix("https://app.example.com"), 50*time.Millisecond))
	})

	t.Run("contains", func(t *testing.T) {
		require.NoError(t, drv.WaitURL(ctx, URLContains("/login"), 50*time.Millisecond))
	})

	t.Run("regexp", func(t *testing.T) {
		require.NoError(t, drv.WaitURL(ctx, URLRegexp(regexp.MustCompile(`/login$`)), 50*time.Millisecond))
	})

	t.Run("predicate observes transition", func(t *testing.T) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			session.Navigate(ctx, "https://app.example.com/dashboard")
		}()
		err := drv.WaitURL(ctx, URLFunc("on dashboard", func(u string) bool {
			return u == "https://app.example.com/dashboard"
		}), 500*time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("timeout carries last URL", func(t *testing.T) {
		err := drv.WaitURL(ctx, URLContains("/premium"), 40*time.Millisecond)
		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err))
		assert.Contains(t, err.Error(), "dashboard", "last observed URL aids diagnosis")
	})
}
