package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// LaunchOptions configures the real browser session
type LaunchOptions struct {
	Headless       bool
	SlowMoMs       float64
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	NavTimeout     time.Duration
}

// PlaywrightSession drives a Chromium tab through Playwright
type PlaywrightSession struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page
	opts       LaunchOptions
	logger     *zap.Logger
}

// NewPlaywrightSession launches Chromium and opens a single page
func NewPlaywrightSession(opts LaunchOptions, logger *zap.Logger) (*PlaywrightSession, error) {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1920
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 1080
	}
	if opts.NavTimeout == 0 {
		opts.NavTimeout = 30 * time.Second
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMoMs > 0 {
		launchOpts.SlowMo = playwright.Float(opts.SlowMoMs)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &PlaywrightSession{
		pw:         pw,
		browser:    browser,
		browserCtx: browserCtx,
		page:       page,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Navigate loads url, waiting for the DOM to be parsed
func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	timeout := s.opts.NavTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *PlaywrightSession) URL() string {
	return s.page.URL()
}

func (s *PlaywrightSession) Title() (string, error) {
	return s.page.Title()
}

func (s *PlaywrightSession) Content() (string, error) {
	return s.page.Content()
}

func (s *PlaywrightSession) Screenshot(fullPage bool) ([]byte, error) {
	return s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypePng,
	})
}

func (s *PlaywrightSession) AccessibilityTree() (string, error) {
	return s.page.Locator("body").AriaSnapshot()
}

func (s *PlaywrightSession) Evaluate(script string) (any, error) {
	return s.page.Evaluate(script)
}

// Find returns the first match for selector. Count is consulted first so a
// missing element surfaces as ErrNoMatch instead of an engine timeout.
func (s *PlaywrightSession) Find(selector string) (Element, error) {
	loc := s.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("counting %q: %w", selector, err)
	}
	if n == 0 {
		return nil, ErrNoMatch
	}
	return &playwrightElement{loc: loc.First()}, nil
}

func (s *PlaywrightSession) Count(selector string) (int, error) {
	return s.page.Locator(selector).Count()
}

func (s *PlaywrightSession) WaitNetworkIdle(timeout time.Duration) error {
	return s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (s *PlaywrightSession) Viewport() (int, int) {
	return s.opts.ViewportWidth, s.opts.ViewportHeight
}

// Close tears the whole stack down in reverse launch order
func (s *PlaywrightSession) Close() error {
	if s.page != nil {
		s.page.Close()
	}
	if s.browserCtx != nil {
		s.browserCtx.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		return s.pw.Stop()
	}
	return nil
}

// playwrightElement adapts a resolved Locator to the Element interface
type playwrightElement struct {
	loc playwright.Locator
}

func (e *playwrightElement) Click() error {
	return e.loc.Click()
}

func (e *playwrightElement) Fill(value string) error {
	return e.loc.Fill(value)
}

func (e *playwrightElement) Press(key string) error {
	return e.loc.Press(key)
}

func (e *playwrightElement) Focus() error {
	return e.loc.Focus()
}

func (e *playwrightElement) InnerText() (string, error) {
	return e.loc.InnerText()
}

func (e *playwrightElement) GetAttribute(name string) (string, error) {
	return e.loc.GetAttribute(name)
}

func (e *playwrightElement) IsVisible() (bool, error) {
	return e.loc.IsVisible()
}
