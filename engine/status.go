package engine

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

// sectionHeader introduces the watched-entries list in the engine's status
// report. Its absence is a valid "no daemon-managed projects" result.
const sectionHeader = "Watched Projects:"

// ProjectStub is one engine-reported watched entry. Only the fields the text
// report carries are populated; everything else stays locally owned.
type ProjectStub struct {
	Path      string
	PID       int
	StartedAt time.Time
	ModeLabel string
}

// startedAtLayouts are the timestamp shapes observed in engine reports.
var startedAtLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseStatusReport extracts project stubs from the engine's human-readable
// status report. The parser is deliberately tolerant: an absent section
// header, a truncated entry, or an unparseable detail line degrades to fewer
// (or zero) stubs, never to an error. The report is advisory, not
// authoritative for existence.
//
// Expected shape:
//
//	Watched Projects:
//	  • /home/u/proj
//	    Started: 2026-08-24 10:00:00
//	    PID: 4321 (smart, incremental)
func ParseStatusReport(report string) []ProjectStub {
	scanner := bufio.NewScanner(strings.NewReader(report))

	inSection := false
	var stubs []ProjectStub
	var current *ProjectStub

	flush := func() {
		if current != nil && current.Path != "" {
			stubs = append(stubs, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !inSection {
			if strings.Contains(line, sectionHeader) {
				inSection = true
			}
			continue
		}

		switch {
		case line == "":
			continue

		case isBulletLine(line):
			flush()
			current = &ProjectStub{Path: trimBullet(line)}

		case current != nil && strings.HasPrefix(line, "Started:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Started:"))
			if ts, ok := parseStartedAt(raw); ok {
				current.StartedAt = ts
			}

		case current != nil && strings.HasPrefix(line, "PID:"):
			rest := strings.TrimSpace(strings.TrimPrefix(line, "PID:"))
			pidStr := rest
			if idx := strings.Index(rest, "("); idx >= 0 {
				pidStr = strings.TrimSpace(rest[:idx])
				current.ModeLabel = strings.TrimSuffix(strings.TrimSpace(rest[idx+1:]), ")")
			}
			if pid, err := strconv.Atoi(pidStr); err == nil {
				current.PID = pid
			}

		default:
			// A line that is neither a bullet nor a known detail ends the
			// section.
			flush()
			return stubs
		}
	}

	flush()
	return stubs
}

var bulletMarkers = []string{"•", "-", "*"}

func isBulletLine(line string) bool {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker+" ") {
			return true
		}
	}
	return false
}

func trimBullet(line string) string {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker+" ") {
			return strings.TrimSpace(strings.TrimPrefix(line, marker+" "))
		}
	}
	return line
}

func parseStartedAt(raw string) (time.Time, bool) {
	for _, layout := range startedAtLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
