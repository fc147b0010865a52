package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewScenarioRecord(t *testing.T) {
	rec := NewScenarioRecord("login", "Login with valid credentials")

	if rec.ID != "login" {
		t.Errorf("ID = %q, want 'login'", rec.ID)
	}
	if rec.Status != StatusPending {
		t.Errorf("Status = %v, want %v", rec.Status, StatusPending)
	}
	if rec.StartedAt != nil {
		t.Error("StartedAt should be nil")
	}
	if rec.CompletedAt != nil {
		t.Error("CompletedAt should be nil")
	}
}

func TestScenarioRecord_PassSetsDuration(t *testing.T) {
	rec := NewScenarioRecord("s1", "first")
	rec.Start()

	if rec.Status != StatusRunning {
		t.Errorf("Status = %v, want %v", rec.Status, StatusRunning)
	}

	time.Sleep(time.Millisecond)
	rec.Pass()

	if rec.Status != StatusPassed {
		t.Errorf("Status = %v, want %v", rec.Status, StatusPassed)
	}
	if rec.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", rec.Duration)
	}
	if rec.Error != "" {
		t.Errorf("Error = %q, want empty", rec.Error)
	}
}

func TestScenarioRecord_SingleTerminalTransition(t *testing.T) {
	rec := NewScenarioRecord("s1", "first")
	rec.Start()
	rec.Fail(errors.New("boom"))

	// First terminal status wins, later ones are ignored.
	rec.Pass()
	rec.Skip("late skip")

	if rec.Status != StatusFailed {
		t.Errorf("Status = %v, want %v", rec.Status, StatusFailed)
	}
	if rec.Error != "boom" {
		t.Errorf("Error = %q, want 'boom'", rec.Error)
	}
}

func TestScenarioRecord_SkipWithoutStart(t *testing.T) {
	rec := NewScenarioRecord("s2", "second")
	rec.Skip("depends on staging data")

	if rec.Status != StatusSkipped {
		t.Errorf("Status = %v, want %v", rec.Status, StatusSkipped)
	}
	if rec.Error != "depends on staging data" {
		t.Errorf("Error = %q", rec.Error)
	}
	if rec.Duration != 0 {
		t.Errorf("Duration = %v, want 0", rec.Duration)
	}
}

func TestRunReport_Finalize(t *testing.T) {
	report := NewRunReport("qa-01")

	for _, tc := range []struct {
		id     string
		status ScenarioStatus
	}{
		{"s1", StatusPassed},
		{"s2", StatusFailed},
		{"s3", StatusPassed},
		{"s4", StatusSkipped},
	} {
		rec := NewScenarioRecord(tc.id, tc.id)
		rec.Start()
		switch tc.status {
		case StatusPassed:
			rec.Pass()
		case StatusFailed:
			rec.Fail(errors.New("x"))
		case StatusSkipped:
			rec.Skip("")
		}
		report.Append(*rec)
	}
	report.Finalize()

	s := report.Summary
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.Total != s.Passed+s.Failed+s.Skipped {
		t.Errorf("total %d != passed %d + failed %d + skipped %d", s.Total, s.Passed, s.Failed, s.Skipped)
	}
	if s.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", s.PassRate)
	}
	if !report.Failed() {
		t.Error("Failed() should be true")
	}
	if report.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}
}

func TestRunReport_DuplicateIdentifiersKept(t *testing.T) {
	report := NewRunReport("")

	first := NewScenarioRecord("search", "search")
	first.Start()
	first.Fail(errors.New("flaked"))
	report.Append(*first)

	second := NewScenarioRecord("search", "search")
	second.Start()
	second.Pass()
	report.Append(*second)

	report.Finalize()

	if len(report.Records) != 2 {
		t.Fatalf("Records = %d, want 2 (history is never discarded)", len(report.Records))
	}
	if report.Summary.Total != 2 {
		t.Errorf("Total = %d, want 2", report.Summary.Total)
	}
}

func TestRunReport_EmptyFinalize(t *testing.T) {
	report := NewRunReport("")
	report.Finalize()

	if report.Summary.Total != 0 {
		t.Errorf("Total = %d, want 0", report.Summary.Total)
	}
	if report.Summary.PassRate != 0 {
		t.Errorf("PassRate = %v, want 0", report.Summary.PassRate)
	}
	if report.Failed() {
		t.Error("empty report should not be failed")
	}
}
