package runner

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/diagnostics"
	"github.com/quoteforge/quoteforge/internal/domain"
	"github.com/quoteforge/quoteforge/internal/driver"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	session := browser.NewMemorySession()
	drv := driver.New(session, zap.NewNop())
	return New(drv, zap.NewNop(), opts...)
}

func noop(ctx context.Context, ex *Execution) error { return nil }

func TestRun_OrderAndStatuses(t *testing.T) {
	r := newTestRunner(t)
	report := domain.NewRunReport("test")

	scenarios := []Scenario{
		{ID: "a", Name: "first", Run: noop},
		{ID: "b", Name: "second", Run: func(ctx context.Context, ex *Execution) error {
			return errors.New("premium never rendered")
		}},
		{ID: "c", Name: "third", Skip: "environment lacks renewal data"},
		{ID: "d", Name: "fourth", Run: noop},
	}

	require.NoError(t, r.Run(context.Background(), scenarios, report))
	report.Finalize()

	require.Len(t, report.Records, 4)
	// Records land in execution order, failure in the middle notwithstanding.
	gotIDs := []string{report.Records[0].ID, report.Records[1].ID, report.Records[2].ID, report.Records[3].ID}
	assert.Equal(t, []string{"a", "b", "c", "d"}, gotIDs)

	assert.Equal(t, domain.StatusPassed, report.Records[0].Status)
	assert.Equal(t, domain.StatusFailed, report.Records[1].Status)
	assert.Contains(t, report.Records[1].Error, "premium never rendered")
	assert.Equal(t, domain.StatusSkipped, report.Records[2].Status)
	assert.Equal(t, "environment lacks renewal data", report.Records[2].Error)
	assert.Equal(t, domain.StatusPassed, report.Records[3].Status)

	assert.True(t, report.Failed())
	assert.Equal(t, 2, report.Summary.Passed)
}

func TestRun_FailureDoesNotStopRun(t *testing.T) {
	r := newTestRunner(t)
	report := domain.NewRunReport("")

	var ran []string
	scenarios := []Scenario{
		{ID: "boom", Name: "boom", Run: func(ctx context.Context, ex *Execution) error {
			ran = append(ran, "boom")
			return errors.New("no")
		}},
		{ID: "after", Name: "after", Run: func(ctx context.Context, ex *Execution) error {
			ran = append(ran, "after")
			return nil
		}},
	}

	require.NoError(t, r.Run(context.Background(), scenarios, report))
	assert.Equal(t, []string{"boom", "after"}, ran)
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	r := newTestRunner(t)
	report := domain.NewRunReport("")

	scenarios := []Scenario{
		{ID: "p", Name: "panics", Run: func(ctx context.Context, ex *Execution) error {
			var el []int
			_ = el[3]
			return nil
		}},
		{ID: "q", Name: "survives", Run: noop},
	}

	require.NoError(t, r.Run(context.Background(), scenarios, report))
	require.Len(t, report.Records, 2)
	assert.Equal(t, domain.StatusFailed, report.Records[0].Status)
	assert.Contains(t, report.Records[0].Error, "panicked")
	assert.Equal(t, domain.StatusPassed, report.Records[1].Status)
}

func TestRun_ScenarioTimeout(t *testing.T) {
	r := newTestRunner(t)
	report := domain.NewRunReport("")

	scenarios := []Scenario{{
		ID:      "slow",
		Name:    "slow",
		Timeout: 20 * time.Millisecond,
		Run: func(ctx context.Context, ex *Execution) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	}}

	start := time.Now()
	require.NoError(t, r.Run(context.Background(), scenarios, report))
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, report.Records, 1)
	assert.Equal(t, domain.StatusFailed, report.Records[0].Status)
	assert.Contains(t, report.Records[0].Error, "not met within")
}

func TestRun_CancelStopsBetweenScenarios(t *testing.T) {
	r := newTestRunner(t)
	report := domain.NewRunReport("")

	ctx, cancel := context.WithCancel(context.Background())
	scenarios := []Scenario{
		{ID: "a", Name: "a", Run: func(ctx context.Context, ex *Execution) error {
			cancel()
			return nil
		}},
		{ID: "b", Name: "b", Run: noop},
	}

	err := r.Run(ctx, scenarios, report)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Records, 1, "cancellation stops before the next scenario starts")
}

func TestRun_FailureCapturesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	session := browser.NewMemorySession()
	drv := driver.New(session, zap.NewNop())
	cap, err := diagnostics.New(session, dir, zap.NewNop())
	require.NoError(t, err)
	r := New(drv, zap.NewNop(), WithCapturer(cap))

	report := domain.NewRunReport("")
	scenarios := []Scenario{{
		ID:   "quote-flow",
		Name: "quote flow",
		Run: func(ctx context.Context, ex *Execution) error {
			ex.Step("select coverage limit")
			return errors.New("dropdown never opened")
		},
	}}

	require.NoError(t, r.Run(context.Background(), scenarios, report))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries, "failure must leave artifacts behind")
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "quote-flow_select_coverage_limit_"), e.Name())
	}
}

func TestRun_OnScenarioDone(t *testing.T) {
	r := newTestRunner(t)
	var seen []string
	r.OnScenarioDone = func(rec domain.ScenarioRecord) {
		seen = append(seen, rec.ID+":"+string(rec.Status))
	}

	report := domain.NewRunReport("")
	scenarios := []Scenario{
		{ID: "a", Name: "a", Run: noop},
		{ID: "b", Name: "b", Skip: "not today"},
	}
	require.NoError(t, r.Run(context.Background(), scenarios, report))
	assert.Equal(t, []string{"a:passed", "b:skipped"}, seen)
}

func TestFilter(t *testing.T) {
	scenarios := []Scenario{
		{ID: "login", Name: "login", Tags: []string{"smoke"}},
		{ID: "quote", Name: "full quote flow", Tags: []string{"smoke", "quote"}},
		{ID: "renewal", Name: "policy renewal", Tags: []string{"quote"}},
	}

	t.Run("empty selection keeps all", func(t *testing.T) {
		assert.Len(t, Filter(scenarios, nil, nil), 3)
	})

	t.Run("by id or name", func(t *testing.T) {
		got := Filter(scenarios, []string{"full quote flow", "login"}, nil)
		require.Len(t, got, 2)
		assert.Equal(t, "login", got[0].ID)
		assert.Equal(t, "quote", got[1].ID)
	})

	t.Run("by tag", func(t *testing.T) {
		got := Filter(scenarios, nil, []string{"quote"})
		require.Len(t, got, 2)
		assert.Equal(t, "quote", got[0].ID)
		assert.Equal(t, "renewal", got[1].ID)
	})

	t.Run("names and tags conjoin", func(t *testing.T) {
		got := Filter(scenarios, []string{"login", "quote"}, []string{"quote"})
		require.Len(t, got, 1)
		assert.Equal(t, "quote", got[0].ID)
	})
}
