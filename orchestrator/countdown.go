package orchestrator

import (
	"time"

	"github.com/wardenhq/warden/project"
)

// NextBackupAt derives the next scheduled backup time: the last observed
// backup (or the watch start when none has completed) plus the interval.
func NextBackupAt(p *project.Project) time.Time {
	base := p.LastBackupAt
	if base.IsZero() {
		base = p.StartedAt
	}
	return base.Add(interval(p))
}

// Countdown returns the time remaining until the next scheduled backup,
// never negative. Once the schedule is overdue without an observed
// completion, the countdown re-arms optimistically to the interval — a
// display-only guess, not a state transition; Overdue reports the truth.
func Countdown(p *project.Project, now time.Time) time.Duration {
	next := NextBackupAt(p)
	if !now.After(next) {
		return next.Sub(now)
	}

	iv := interval(p)
	elapsed := now.Sub(next)
	return iv - (elapsed % iv)
}

// Overdue reports whether the scheduled backup time has passed without an
// observed backup completion.
func Overdue(p *project.Project, now time.Time) bool {
	return now.After(NextBackupAt(p))
}

func interval(p *project.Project) time.Duration {
	minutes := p.IntervalMinutes
	if minutes <= 0 {
		minutes = project.DefaultIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}
