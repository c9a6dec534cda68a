package engine

import (
	"testing"
	"time"
)

const sampleReport = `Engine Daemon Status:
  PID: 1000
  Projects watched: 2

Watched Projects:
  • /home/u/proj
    Started: 2026-08-24 10:00:00
    PID: 4321 (smart, incremental)
  • /home/u/other
    Started: 2026-08-24 11:30:00
    PID: 4322 (full)
`

func TestParseStatusReport(t *testing.T) {
	stubs := ParseStatusReport(sampleReport)
	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}

	first := stubs[0]
	if first.Path != "/home/u/proj" {
		t.Errorf("unexpected path: %s", first.Path)
	}
	if first.PID != 4321 {
		t.Errorf("unexpected pid: %d", first.PID)
	}
	if first.ModeLabel != "smart, incremental" {
		t.Errorf("unexpected mode label: %q", first.ModeLabel)
	}
	want := time.Date(2026, 8, 24, 10, 0, 0, 0, time.Local)
	if !first.StartedAt.Equal(want) {
		t.Errorf("unexpected started at: %v", first.StartedAt)
	}

	if stubs[1].Path != "/home/u/other" || stubs[1].PID != 4322 {
		t.Errorf("unexpected second stub: %+v", stubs[1])
	}
}

func TestParseStatusReportNoSection(t *testing.T) {
	reports := []string{
		"",
		"Engine daemon is not running\n",
		"Engine Daemon Status:\n  PID: 1000\n  Projects watched: 0\n",
	}
	for _, report := range reports {
		if stubs := ParseStatusReport(report); len(stubs) != 0 {
			t.Errorf("expected no stubs for %q, got %v", report, stubs)
		}
	}
}

func TestParseStatusReportMalformedDetails(t *testing.T) {
	report := `Watched Projects:
  • /home/u/proj
    Started: not-a-timestamp
    PID: not-a-number
`
	stubs := ParseStatusReport(report)
	if len(stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(stubs))
	}
	if stubs[0].Path != "/home/u/proj" {
		t.Errorf("unexpected path: %s", stubs[0].Path)
	}
	if stubs[0].PID != 0 {
		t.Errorf("unparseable pid should stay 0, got %d", stubs[0].PID)
	}
	if !stubs[0].StartedAt.IsZero() {
		t.Errorf("unparseable timestamp should stay zero, got %v", stubs[0].StartedAt)
	}
}

func TestParseStatusReportPathOnlyEntries(t *testing.T) {
	report := `Watched Projects:
  - /home/u/proj
  - /home/u/other
`
	stubs := ParseStatusReport(report)
	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}
}

func TestParseStatusReportSectionEndsAtUnknownLine(t *testing.T) {
	report := `Watched Projects:
  • /home/u/proj
    PID: 11 (smart)
Cloud Status:
  • not-a-project
`
	stubs := ParseStatusReport(report)
	if len(stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d: %v", len(stubs), stubs)
	}
	if stubs[0].PID != 11 {
		t.Errorf("unexpected pid: %d", stubs[0].PID)
	}
}
