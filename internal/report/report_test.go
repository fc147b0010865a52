package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteforge/quoteforge/internal/domain"
)

func sampleReport() *domain.RunReport {
	r := domain.NewRunReport("acme-insurance")

	passed := domain.NewScenarioRecord("login", "login with valid credentials")
	passed.Start()
	passed.Pass()
	r.Append(*passed)

	failed := domain.NewScenarioRecord("quote", "full quote flow")
	failed.Start()
	failed.Fail(errors.New("condition \"premium visible\" not met within 5s"))
	r.Append(*failed)

	skipped := domain.NewScenarioRecord("renewal", "policy renewal")
	skipped.Skip("renewal environment unavailable")
	r.Append(*skipped)

	r.Finalize()
	return r
}

func TestWriteAndReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	orig := sampleReport()

	require.NoError(t, WriteJSON(path, orig))

	got, err := ReadJSON(path)
	require.NoError(t, err)

	assert.Equal(t, orig.RunID, got.RunID)
	assert.Equal(t, orig.Summary, got.Summary)
	require.Len(t, got.Records, 3)
	assert.Equal(t, domain.StatusFailed, got.Records[1].Status)
	assert.Contains(t, got.Records[1].Error, "premium visible")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	require.NoError(t, RenderHTML(&buf, r))
	html := buf.String()

	assert.Contains(t, html, r.RunID)
	assert.Contains(t, html, "acme-insurance")
	assert.Contains(t, html, "full quote flow")
	assert.Contains(t, html, "renewal environment unavailable")
	assert.Contains(t, html, "33.3%")
	assert.NotContains(t, html, "No scenarios were executed")

	// Scenario rows render in completion order.
	assert.Less(t, strings.Index(html, "login with valid credentials"), strings.Index(html, "full quote flow"))
	assert.Less(t, strings.Index(html, "full quote flow"), strings.Index(html, "policy renewal"))
}

func TestRenderHTML_ProportionBar(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	require.NoError(t, RenderHTML(&buf, r))
	html := buf.String()

	widths := regexp.MustCompile(`width: ([0-9.]+)%`).FindAllStringSubmatch(html, -1)
	require.Len(t, widths, 3, "one segment per terminal status")

	var sum float64
	for _, m := range widths {
		v, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		sum += v
	}
	assert.InDelta(t, 100.0, sum, 0.2, "status shares must account for every scenario")

	// Per-status share next to each counter.
	assert.Contains(t, html, `<span class="share">33.3%</span>`)
}

func TestRenderHTML_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	r := domain.NewRunReport("")
	r.Finalize()

	require.NoError(t, RenderHTML(&buf, r))
	html := buf.String()

	assert.Contains(t, html, "No scenarios were executed")
	assert.Contains(t, html, "0.0%")
}

func TestRenderHTML_EscapesErrorText(t *testing.T) {
	var buf bytes.Buffer
	r := domain.NewRunReport("")
	rec := domain.NewScenarioRecord("x", "dom injection")
	rec.Start()
	rec.Fail(errors.New("<script>alert(1)</script>"))
	r.Append(*rec)
	r.Finalize()

	require.NoError(t, RenderHTML(&buf, r))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.html")
	require.NoError(t, WriteHTML(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
}

func TestFmtHelpers(t *testing.T) {
	assert.Equal(t, "1.235s", fmtDuration(1234567*time.Microsecond))
	assert.Equal(t, "-", fmtTime(time.Time{}))
	assert.Equal(t, "66.7%", fmtRate(66.66666))
}
