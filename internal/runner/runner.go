// Package runner executes scenarios sequentially against one browser
// session and owns the single failure boundary: interaction primitives
// return errors, page objects propagate them, and only the runner decides
// that a scenario is dead.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/diagnostics"
	"github.com/quoteforge/quoteforge/internal/domain"
	"github.com/quoteforge/quoteforge/internal/driver"
	"github.com/quoteforge/quoteforge/internal/observability"
)

// Scenario is one logical end-to-end test
type Scenario struct {
	ID   string
	Name string
	Tags []string

	// Timeout bounds the whole scenario. Zero means the runner default.
	Timeout time.Duration

	// Skip, when non-empty, records the scenario as skipped with this
	// reason and never invokes Run.
	Skip string

	Run func(ctx context.Context, ex *Execution) error
}

// Execution is the per-scenario handle passed to a scenario body. It tracks
// the current step label so a failure anywhere in the body is attributed to
// the step that was announced last.
type Execution struct {
	drv      *driver.Driver
	capturer *diagnostics.Capturer
	logger   *zap.Logger

	scenarioID string
	step       string
}

// Driver returns the shared interaction driver
func (ex *Execution) Driver() *driver.Driver {
	return ex.drv
}

// Step announces the step about to run. Failure diagnostics carry the most
// recently announced label.
func (ex *Execution) Step(label string) {
	ex.step = label
	ex.logger.Info("step",
		zap.String("scenario", ex.scenarioID),
		zap.String("step", label))
}

// CurrentStep returns the last announced step label
func (ex *Execution) CurrentStep() string {
	return ex.step
}

// Checkpoint captures the cheap textual snapshots mid-scenario without
// failing anything. Useful before steps with a history of flaking.
func (ex *Execution) Checkpoint(ctx context.Context) {
	if ex.capturer == nil {
		return
	}
	ex.capturer.Capture(ctx, ex.scenarioID, ex.step, false)
}

// Runner drives scenarios one at a time in registration order
type Runner struct {
	drv      *driver.Driver
	capturer *diagnostics.Capturer
	logger   *zap.Logger
	metrics  *observability.Metrics

	defaultTimeout time.Duration

	// OnScenarioDone observes each terminal record as it is appended,
	// for live progress output.
	OnScenarioDone func(rec domain.ScenarioRecord)
}

// Option configures a Runner
type Option func(*Runner)

// WithMetrics attaches Prometheus instruments
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithDefaultTimeout sets the per-scenario budget used when a scenario
// declares none
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Runner) { r.defaultTimeout = d }
}

// WithCapturer attaches failure diagnostics capture
func WithCapturer(c *diagnostics.Capturer) Option {
	return func(r *Runner) { r.capturer = c }
}

// New creates a Runner over one driver
func New(drv *driver.Driver, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	r := &Runner{
		drv:            drv,
		logger:         logger,
		defaultTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenarios in order, appending one terminal record per
// scenario to report. A scenario failure never stops the run; the caller
// inspects report.Failed for the process exit code. Run itself only fails
// when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario, report *domain.RunReport) error {
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := domain.NewScenarioRecord(s.ID, s.Name)

		if s.Skip != "" {
			r.logger.Info("scenario skipped",
				zap.String("scenario", s.ID),
				zap.String("reason", s.Skip))
			rec.Skip(s.Skip)
			r.finish(report, *rec)
			continue
		}

		r.logger.Info("scenario starting",
			zap.String("scenario", s.ID),
			zap.String("name", s.Name))
		rec.Start()

		ex := &Execution{
			drv:        r.drv,
			capturer:   r.capturer,
			logger:     r.logger,
			scenarioID: s.ID,
		}

		err := r.runOne(ctx, s, ex)
		if err != nil {
			r.logger.Error("scenario failed",
				zap.String("scenario", s.ID),
				zap.String("step", ex.step),
				zap.Error(err))
			r.captureFailure(ctx, s.ID, ex.step, err)
			rec.Fail(err)
		} else {
			r.logger.Info("scenario passed", zap.String("scenario", s.ID))
			rec.Pass()
		}
		r.finish(report, *rec)
	}
	return nil
}

// runOne applies the scenario timeout and converts panics in the scenario
// body into ordinary failures so one bad scenario cannot take down the run.
func (r *Runner) runOne(ctx context.Context, s Scenario, ex *Execution) (err error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("scenario panicked",
				zap.String("scenario", s.ID),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("scenario %s panicked: %v", s.ID, rec)
		}
	}()

	if err := s.Run(sctx, ex); err != nil {
		if sctx.Err() != nil && ctx.Err() == nil {
			return domain.TimeoutError("scenario "+s.ID, timeout)
		}
		return err
	}
	return nil
}

// captureFailure runs the diagnostics capture on the run context, not the
// expired scenario context, so a timed-out scenario still yields artifacts.
func (r *Runner) captureFailure(ctx context.Context, scenarioID, step string, cause error) {
	if r.capturer == nil {
		return
	}
	if r.metrics != nil {
		r.metrics.CapturesTotal.Inc()
	}
	if _, err := r.capturer.CaptureFailure(ctx, scenarioID, step, cause); err != nil {
		if r.metrics != nil {
			r.metrics.CaptureFailures.Inc()
		}
		r.logger.Warn("failure capture incomplete",
			zap.String("scenario", scenarioID),
			zap.Error(err))
	}
}

func (r *Runner) finish(report *domain.RunReport, rec domain.ScenarioRecord) {
	if r.metrics != nil {
		r.metrics.ScenariosTotal.WithLabelValues(string(rec.Status)).Inc()
		r.metrics.ScenarioDuration.WithLabelValues(rec.ID).Observe(rec.Duration.Seconds())
	}
	report.Append(rec)
	if r.OnScenarioDone != nil {
		r.OnScenarioDone(rec)
	}
}

// Filter returns the scenarios matching the name and tag selections, in
// their original order. Empty selections match everything; both selections
// together are a conjunction.
func Filter(scenarios []Scenario, names, tags []string) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if len(names) > 0 && !slices.Contains(names, s.ID) && !slices.Contains(names, s.Name) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(s.Tags, tags) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, t := range want {
		if slices.Contains(have, t) {
			return true
		}
	}
	return false
}
