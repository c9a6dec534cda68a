package orchestrator

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wardenhq/warden/overlap"
	"github.com/wardenhq/warden/project"
)

// metadataReadLimit caps concurrent per-project metadata reads during a
// snapshot.
const metadataReadLimit = 4

// Snapshot merges the engine's self-reported status with the local registry
// and returns the authoritative project list, each path exactly once, with
// derived countdown fields computed.
//
// Field ownership: the engine report owns pid and startedAt; local
// bookkeeping owns mode, interval, backup times, and the change ledger —
// unless the engine's per-project metadata carries fresher values, which
// then win. Session-managed projects pass through verbatim: the engine never
// reports them. The merge is idempotent: with no intervening mutation,
// repeated calls return identical results.
func (o *Orchestrator) Snapshot(ctx context.Context) []*project.Project {
	stubs, err := o.eng.Status(ctx)
	if err != nil {
		// Advisory source: degrade to zero engine-reported projects, the
		// locally tracked ones stay visible.
		log.Printf("Warning: engine status unavailable: %v", err)
		stubs = nil
	}

	now := o.now()
	added := false
	for _, stub := range stubs {
		if stub.Path == "" {
			continue
		}
		path := overlap.Canonicalize(stub.Path)

		merged := o.registry.Update(path, func(p *project.Project) {
			if stub.PID > 0 {
				p.PID = stub.PID
			}
			if !stub.StartedAt.IsZero() {
				p.StartedAt = stub.StartedAt
			}
		})
		if merged {
			continue
		}

		// The engine knows a project this process does not — registered by
		// a prior run or another client. Adopt it as daemon-managed.
		p := project.New(path, o.cfg.Watch.IntervalMinutes, now)
		p.Mode = project.DaemonManaged
		p.PID = stub.PID
		if !stub.StartedAt.IsZero() {
			p.StartedAt = stub.StartedAt
		}
		o.registry.Put(p)
		added = true
	}

	completed := o.refreshFromMetadata(ctx)

	if added {
		o.bus.Publish(Notification{Type: NotifyProjectListChanged})
	}
	for _, path := range completed {
		o.bus.Publish(Notification{Type: NotifyBackupCompleted, Path: path})
	}

	list := o.registry.List()
	for _, p := range list {
		p.NextBackupAt = NextBackupAt(p)
		p.Overdue = Overdue(p, now)
	}
	return list
}

// refreshFromMetadata opportunistically reads each project's engine metadata
// and merges fresher interval/last-backup values. Read failures are ignored.
// Returns the paths whose last backup time moved forward.
func (o *Orchestrator) refreshFromMetadata(ctx context.Context) []string {
	var (
		mu        sync.Mutex
		completed []string
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(metadataReadLimit)
	for _, path := range o.registry.Paths() {
		path := path
		g.Go(func() error {
			meta, err := o.eng.ReadMetadata(path)
			if err != nil || meta == nil {
				return nil
			}
			o.registry.Update(path, func(p *project.Project) {
				if meta.IntervalMinutes > 0 {
					p.IntervalMinutes = meta.IntervalMinutes
				}
				if meta.LastBackupAt.After(p.LastBackupAt) {
					p.LastBackupAt = meta.LastBackupAt
					mu.Lock()
					completed = append(completed, path)
					mu.Unlock()
				}
			})
			return nil
		})
	}
	g.Wait()
	return completed
}
