package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/domain"
	"github.com/quoteforge/quoteforge/internal/storage"
)

// Artifact is one captured diagnostic file
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
	URI  string `json:"uri,omitempty"`
}

// CaptureMeta describes the page state at capture time. One metadata file
// accompanies every capture under the shared prefix.
type CaptureMeta struct {
	Scenario       string    `json:"scenario"`
	Step           string    `json:"step"`
	ClientID       string    `json:"client_id,omitempty"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	ViewportWidth  int       `json:"viewport_width"`
	ViewportHeight int       `json:"viewport_height"`
	CapturedAt     time.Time `json:"captured_at"`
}

// FailureRecord is the structured companion written next to failure
// artifacts, so a reviewer can reconstruct the failure without replaying
// the run. It doubles as the capture's metadata file.
type FailureRecord struct {
	Scenario       string     `json:"scenario"`
	Step           string     `json:"step"`
	ClientID       string     `json:"client_id,omitempty"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	ViewportWidth  int        `json:"viewport_width"`
	ViewportHeight int        `json:"viewport_height"`
	Error          string     `json:"error"`
	ErrorCode      string     `json:"error_code"`
	CapturedAt     time.Time  `json:"captured_at"`
	Artifacts      []Artifact `json:"artifacts"`
}

// Capturer collects page state snapshots into a run directory. Capture is
// best-effort end to end: a broken session must never turn a scenario
// failure into a run crash, so individual artifact failures are logged and
// skipped rather than propagated.
type Capturer struct {
	session  browser.Session
	dir      string
	clientID string
	store    storage.ArtifactStore
	logger   *zap.Logger

	now func() time.Time
}

// Option configures a Capturer
type Option func(*Capturer)

// WithStore mirrors every artifact to remote storage as well as disk
func WithStore(store storage.ArtifactStore) Option {
	return func(c *Capturer) { c.store = store }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Capturer) { c.now = now }
}

// WithClientID stamps every capture's metadata with the client identifier
func WithClientID(id string) Option {
	return func(c *Capturer) { c.clientID = id }
}

// New creates a Capturer writing under dir, creating it if needed
func New(session browser.Session, dir string, logger *zap.Logger, opts ...Option) (*Capturer, error) {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}

	c := &Capturer{
		session: session,
		dir:     dir,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Capture snapshots the current page state under a shared filename prefix.
// Markup and metadata are always captured; the screenshot is optional here,
// since checkpoints mid-scenario usually want only the cheap snapshots.
func (c *Capturer) Capture(ctx context.Context, scenario, step string, screenshot bool) []Artifact {
	prefix := c.prefix(scenario, step)
	var artifacts []Artifact

	if screenshot {
		if a, ok := c.screenshot(ctx, prefix); ok {
			artifacts = append(artifacts, a)
		}
	}
	if a, ok := c.domSnapshot(ctx, prefix); ok {
		artifacts = append(artifacts, a)
	}
	if a, ok := c.a11ySnapshot(ctx, prefix); ok {
		artifacts = append(artifacts, a)
	}
	if a, ok := c.metadata(ctx, prefix, scenario, step); ok {
		artifacts = append(artifacts, a)
	}
	return artifacts
}

// CaptureFailure records the full diagnostic set for a failed step: a
// screenshot, DOM and accessibility snapshots, and a structured failure
// record, all sharing one prefix. Returns the failure record path and the
// artifact list; the error reports a capture that produced nothing at all,
// wrapped as CaptureFailed so callers can log and move on.
func (c *Capturer) CaptureFailure(ctx context.Context, scenario, step string, cause error) (*FailureRecord, error) {
	prefix := c.prefix(scenario, step)
	var artifacts []Artifact

	if a, ok := c.screenshot(ctx, prefix); ok {
		artifacts = append(artifacts, a)
	}
	if a, ok := c.domSnapshot(ctx, prefix); ok {
		artifacts = append(artifacts, a)
	}
	if a, ok := c.a11ySnapshot(ctx, prefix); ok {
		artifacts = append(artifacts, a)
	}

	title, _ := c.session.Title()
	w, h := c.session.Viewport()
	rec := &FailureRecord{
		Scenario:       scenario,
		Step:           step,
		ClientID:       c.clientID,
		URL:            c.session.URL(),
		Title:          title,
		ViewportWidth:  w,
		ViewportHeight: h,
		Error:          errString(cause),
		ErrorCode:      domain.CodeOf(cause),
		CapturedAt:     c.now().UTC(),
		Artifacts:      artifacts,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return rec, domain.CaptureError("failure record", err)
	}
	if a, ok := c.write(ctx, prefix+".failure.json", "failure", data); ok {
		rec.Artifacts = append(rec.Artifacts, a)
		return rec, nil
	}
	if len(artifacts) == 0 {
		return rec, domain.CaptureError("failure snapshot", fmt.Errorf("no artifact could be written"))
	}
	return rec, nil
}

func (c *Capturer) metadata(ctx context.Context, prefix, scenario, step string) (Artifact, bool) {
	title, _ := c.session.Title()
	w, h := c.session.Viewport()
	meta := CaptureMeta{
		Scenario:       scenario,
		Step:           step,
		ClientID:       c.clientID,
		URL:            c.session.URL(),
		Title:          title,
		ViewportWidth:  w,
		ViewportHeight: h,
		CapturedAt:     c.now().UTC(),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		c.logger.Warn("encoding capture metadata failed", zap.String("prefix", prefix), zap.Error(err))
		return Artifact{}, false
	}
	return c.write(ctx, prefix+".meta.json", "metadata", data)
}

func (c *Capturer) screenshot(ctx context.Context, prefix string) (Artifact, bool) {
	data, err := c.session.Screenshot(true)
	if err != nil {
		c.logger.Warn("screenshot capture failed", zap.String("prefix", prefix), zap.Error(err))
		return Artifact{}, false
	}
	return c.write(ctx, prefix+".png", "screenshot", data)
}

func (c *Capturer) domSnapshot(ctx context.Context, prefix string) (Artifact, bool) {
	html, err := c.session.Content()
	if err != nil {
		c.logger.Warn("dom snapshot failed", zap.String("prefix", prefix), zap.Error(err))
		return Artifact{}, false
	}
	return c.write(ctx, prefix+".dom.html", "dom", []byte(html))
}

func (c *Capturer) a11ySnapshot(ctx context.Context, prefix string) (Artifact, bool) {
	tree, err := c.session.AccessibilityTree()
	if err != nil {
		c.logger.Warn("accessibility snapshot failed", zap.String("prefix", prefix), zap.Error(err))
		return Artifact{}, false
	}
	return c.write(ctx, prefix+".a11y.txt", "a11y", []byte(tree))
}

func (c *Capturer) write(ctx context.Context, name, kind string, data []byte) (Artifact, bool) {
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("writing artifact failed",
			zap.String("artifact", name),
			zap.Error(err))
		return Artifact{}, false
	}

	a := Artifact{Kind: kind, Path: path}
	if c.store != nil {
		uri, err := c.store.Put(ctx, name, data)
		if err != nil {
			c.logger.Warn("artifact upload failed",
				zap.String("artifact", name),
				zap.Error(err))
		} else {
			a.URI = uri
		}
	}
	return a, true
}

// prefix builds `{scenario}_{step}_{timestamp}` with filesystem-hostile
// characters squashed, so every artifact of one capture sorts together.
func (c *Capturer) prefix(scenario, step string) string {
	ts := c.now().UTC().Format("20060102_150405.000")
	ts = strings.ReplaceAll(ts, ".", "")
	return fmt.Sprintf("%s_%s_%s", sanitize(scenario), sanitize(step), ts)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
