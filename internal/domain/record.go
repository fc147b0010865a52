package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioStatus represents the state of one scenario
type ScenarioStatus string

const (
	StatusPending ScenarioStatus = "pending"
	StatusRunning ScenarioStatus = "running"
	StatusPassed  ScenarioStatus = "passed"
	StatusFailed  ScenarioStatus = "failed"
	StatusSkipped ScenarioStatus = "skipped"
)

func (s ScenarioStatus) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped
}

func (s ScenarioStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// ScenarioRecord is the result of one logical test. Created pending at
// scenario start, moved to exactly one terminal status at scenario end and
// immutable thereafter.
type ScenarioRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      ScenarioStatus `json:"status"`
	Duration    time.Duration  `json:"duration"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// NewScenarioRecord creates a pending record
func NewScenarioRecord(id, name string) *ScenarioRecord {
	return &ScenarioRecord{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// Start marks the record running
func (r *ScenarioRecord) Start() {
	if r.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	r.Status = StatusRunning
	r.StartedAt = &now
}

// Pass moves the record to its terminal passed state
func (r *ScenarioRecord) Pass() {
	r.finish(StatusPassed, "")
}

// Fail moves the record to its terminal failed state with the terminating error
func (r *ScenarioRecord) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.finish(StatusFailed, msg)
}

// Skip moves the record straight to skipped
func (r *ScenarioRecord) Skip(reason string) {
	r.finish(StatusSkipped, reason)
}

// finish applies the single permitted terminal transition. A second call is
// a no-op: the first terminal status wins.
func (r *ScenarioRecord) finish(status ScenarioStatus, detail string) {
	if r.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	r.Status = status
	r.Error = detail
	r.CompletedAt = &now
	if r.StartedAt != nil {
		r.Duration = now.Sub(*r.StartedAt)
	}
}

// Summary provides run-level counters
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
	PassRate float64       `json:"pass_rate"`
}

// RunReport is the ordered record of one process invocation. Append-only:
// duplicate scenario identifiers are kept, never overwritten.
type RunReport struct {
	RunID       string           `json:"run_id"`
	ClientID    string           `json:"client_id,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Records     []ScenarioRecord `json:"records"`
	Summary     Summary          `json:"summary"`
}

// NewRunReport creates an empty report for a fresh run
func NewRunReport(clientID string) *RunReport {
	return &RunReport{
		RunID:     uuid.New().String(),
		ClientID:  clientID,
		StartedAt: time.Now().UTC(),
	}
}

// Append adds a completed record in scenario-completion order
func (r *RunReport) Append(rec ScenarioRecord) {
	r.Records = append(r.Records, rec)
}

// Finalize stamps the end time and recomputes counters
func (r *RunReport) Finalize() {
	r.CompletedAt = time.Now().UTC()
	s := Summary{Total: len(r.Records)}
	for _, rec := range r.Records {
		switch rec.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
		s.Duration += rec.Duration
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	r.Summary = s
}

// Failed reports whether any executed scenario failed
func (r *RunReport) Failed() bool {
	for _, rec := range r.Records {
		if rec.Status == StatusFailed {
			return true
		}
	}
	return false
}
