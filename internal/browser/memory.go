package browser

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemorySession is a scripted in-memory Session for local development and
// package tests, in the spirit of running the pipeline without a real
// browser. Selectors are opaque keys into a scripted element table; tests
// install elements and navigation hooks to model the application under test.
type MemorySession struct {
	mu sync.Mutex

	CurrentURL string
	PageTitle  string
	HTML       string
	A11y       string
	PNG        []byte

	// Elements maps selector -> scripted element. A nil entry and a missing
	// entry are both "no match".
	Elements map[string]*MemoryElement

	// OnNavigate lets a script swap the element table per page.
	OnNavigate func(s *MemorySession, url string)

	// Injected failures
	NavigateErr    error
	ContentErr     error
	ScreenshotErr  error
	NetworkIdleErr error

	NavigateCalls    int
	NetworkIdleCalls int

	ViewportW int
	ViewportH int
}

// NewMemorySession returns an empty scripted session
func NewMemorySession() *MemorySession {
	return &MemorySession{
		Elements:  make(map[string]*MemoryElement),
		PageTitle: "blank",
		HTML:      "<html><body></body></html>",
		A11y:      "- document",
		PNG:       []byte("\x89PNG\r\n\x1a\n"),
		ViewportW: 1920,
		ViewportH: 1080,
	}
}

// Install registers an element under one or more selectors
func (s *MemorySession) Install(el *MemoryElement, selectors ...string) *MemoryElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range selectors {
		s.Elements[sel] = el
	}
	return el
}

func (s *MemorySession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.NavigateCalls++
	s.mu.Unlock()
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.mu.Lock()
	s.CurrentURL = url
	s.mu.Unlock()
	if s.OnNavigate != nil {
		s.OnNavigate(s, url)
	}
	return nil
}

func (s *MemorySession) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CurrentURL
}

func (s *MemorySession) Title() (string, error) {
	return s.PageTitle, nil
}

func (s *MemorySession) Content() (string, error) {
	if s.ContentErr != nil {
		return "", s.ContentErr
	}
	return s.HTML, nil
}

func (s *MemorySession) Screenshot(fullPage bool) ([]byte, error) {
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return s.PNG, nil
}

func (s *MemorySession) AccessibilityTree() (string, error) {
	return s.A11y, nil
}

func (s *MemorySession) Evaluate(script string) (any, error) {
	return nil, nil
}

func (s *MemorySession) Find(selector string) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.Elements[selector]
	if !ok || el == nil {
		return nil, ErrNoMatch
	}
	el.session = s
	return el, nil
}

func (s *MemorySession) Count(selector string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.Elements[selector]; ok && el != nil {
		return 1, nil
	}
	return 0, nil
}

func (s *MemorySession) WaitNetworkIdle(timeout time.Duration) error {
	s.mu.Lock()
	s.NetworkIdleCalls++
	s.mu.Unlock()
	return s.NetworkIdleErr
}

func (s *MemorySession) Viewport() (int, int) {
	return s.ViewportW, s.ViewportH
}

func (s *MemorySession) Close() error {
	return nil
}

// MemoryElement is one scripted element
type MemoryElement struct {
	mu      sync.Mutex
	session *MemorySession

	Visible bool
	Text    string
	Value   string
	Attrs   map[string]string

	// VisibleAfter makes the element report hidden for the first N
	// visibility checks, for exercising waits.
	VisibleAfter int
	visChecks    int

	// OnClick runs after a successful click, with the owning session.
	OnClick func(s *MemorySession)

	// FailClicks rejects the first N clicks, modelling an overlay that
	// intercepts pointer events while an animation settles.
	FailClicks int

	ClickErr error
	FillErr  error

	Clicks int
	Keys   []string
	Fills  []string
	Focuses int
}

func (e *MemoryElement) Click() error {
	e.mu.Lock()
	e.Clicks++
	if e.FailClicks > 0 {
		e.FailClicks--
		e.mu.Unlock()
		return errors.New("element intercepts pointer events")
	}
	sess := e.session
	hook := e.OnClick
	err := e.ClickErr
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(sess)
	}
	return nil
}

func (e *MemoryElement) Fill(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FillErr != nil {
		return e.FillErr
	}
	e.Fills = append(e.Fills, value)
	e.Value = value
	return nil
}

func (e *MemoryElement) Press(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Keys = append(e.Keys, key)
	if len(key) == 1 {
		e.Value += key
	}
	return nil
}

func (e *MemoryElement) Focus() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Focuses++
	return nil
}

func (e *MemoryElement) InnerText() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Text, nil
}

func (e *MemoryElement) GetAttribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

func (e *MemoryElement) IsVisible() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.VisibleAfter > 0 {
		e.visChecks++
		if e.visChecks <= e.VisibleAfter {
			return false, nil
		}
		return true, nil
	}
	return e.Visible, nil
}

// SetVisible flips visibility from a script hook
func (e *MemoryElement) SetVisible(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Visible = v
	e.VisibleAfter = 0
}

// SetText updates displayed text from a script hook
func (e *MemoryElement) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Text = text
}
