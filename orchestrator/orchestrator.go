// Package orchestrator supervises watched projects: it decides how each
// project is watched (delegated to the engine daemon or run as an owned
// session process), reconciles engine-reported state with local bookkeeping,
// tracks live file-change activity, and derives backup countdowns.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/wardenhq/warden/config"
	"github.com/wardenhq/warden/engine"
	"github.com/wardenhq/warden/ledger"
	"github.com/wardenhq/warden/overlap"
	"github.com/wardenhq/warden/project"
	"github.com/wardenhq/warden/session"
)

// EngineClient is the slice of the engine boundary the orchestrator drives.
// engine.Client implements it; tests substitute fakes.
type EngineClient interface {
	Register(ctx context.Context, path string, opts engine.RegisterOptions) error
	Deregister(ctx context.Context, path string) error
	Status(ctx context.Context) ([]engine.ProjectStub, error)
	ForceBackup(ctx context.Context, path, description string) error
	StopEngine(ctx context.Context) error
	ReadMetadata(path string) (*engine.Metadata, error)
}

// SessionSpawner creates and terminates owned fallback watch processes.
// session.Spawner implements it.
type SessionSpawner interface {
	Spawn(path string, opts session.Options) (*session.Handle, error)
	Stop(h *session.Handle) error
}

// WatchOptions are the caller's watch parameters.
type WatchOptions struct {
	Persistence     project.Persistence
	IntervalMinutes int
	ExcludeGit      bool
	// AllowOverlap proceeds despite containment conflicts; set by callers
	// that have already resolved them.
	AllowOverlap bool
}

type Orchestrator struct {
	cfg      *config.Config
	eng      EngineClient
	spawner  SessionSpawner
	registry *project.Registry
	bus      *Bus
	now      func() time.Time

	mu        sync.Mutex
	watchers  map[string]*ledger.Watcher
	sessions  map[string]*session.Handle
	pathLocks map[string]*sync.Mutex

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func New(cfg *config.Config, eng EngineClient, spawner SessionSpawner) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		eng:       eng,
		spawner:   spawner,
		registry:  project.NewRegistry(),
		bus:       NewBus(),
		now:       time.Now,
		watchers:  make(map[string]*ledger.Watcher),
		sessions:  make(map[string]*session.Handle),
		pathLocks: make(map[string]*sync.Mutex),
	}
}

// Subscribe registers a notification subscriber.
func (o *Orchestrator) Subscribe() (string, <-chan Notification) {
	return o.bus.Subscribe()
}

// Unsubscribe removes a notification subscriber.
func (o *Orchestrator) Unsubscribe(id string) {
	o.bus.Unsubscribe(id)
}

// Watch starts watching path. When containment conflicts exist and the
// caller has not set AllowOverlap, the conflicts are returned as data with no
// state mutated: a decision point, not an error. Concurrent Watch calls for
// the same canonical path are serialized.
func (o *Orchestrator) Watch(ctx context.Context, path string, opts WatchOptions) (*project.Project, []overlap.Result, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("project path is empty")
	}
	canonical := overlap.Canonicalize(path)
	if info, err := os.Stat(canonical); err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("project path %s is not a directory", canonical)
	}

	unlock := o.lockPath(canonical)
	defer unlock()

	if !opts.AllowOverlap {
		if conflicts := overlap.Check(canonical, o.registry.Paths()); len(conflicts) > 0 {
			return nil, conflicts, nil
		}
	}

	// Replacing an existing entry (AllowOverlap path): release its watcher
	// and any owned process before starting over.
	if existing := o.registry.Get(canonical); existing != nil {
		o.stopChangeWatcher(canonical)
		if existing.Mode == project.SessionManaged {
			o.mu.Lock()
			handle := o.sessions[canonical]
			delete(o.sessions, canonical)
			o.mu.Unlock()
			if err := o.spawner.Stop(handle); err != nil {
				log.Printf("Warning: failed to stop replaced session process for %s: %v", canonical, err)
			}
		}
	}

	interval := opts.IntervalMinutes
	if interval <= 0 {
		interval = o.cfg.Watch.IntervalMinutes
	}

	now := o.now()
	p := project.New(canonical, interval, now)
	p.Persistence = opts.Persistence

	if opts.Persistence == project.SessionOnly {
		if err := o.spawnSession(canonical, p, opts); err != nil {
			return nil, nil, err
		}
	} else {
		regOpts := engine.RegisterOptions{IntervalMinutes: interval, ExcludeGit: opts.ExcludeGit}
		if err := o.eng.Register(ctx, canonical, regOpts); err != nil {
			// Fall back to an owned session process; the caller only sees
			// the resulting mode.
			log.Printf("Warning: daemon registration failed for %s, falling back to session watch: %v", canonical, err)
			if spawnErr := o.spawnSession(canonical, p, opts); spawnErr != nil {
				return nil, nil, fmt.Errorf("daemon registration and session fallback both failed: %w", spawnErr)
			}
		} else {
			p.Mode = project.DaemonManaged
		}
	}

	p.NextBackupAt = NextBackupAt(p)

	if err := o.startChangeWatcher(canonical); err != nil {
		log.Printf("Warning: failed to start change watcher for %s: %v", canonical, err)
	}

	o.registry.Put(p)
	o.bus.Publish(Notification{Type: NotifyProjectListChanged})
	return p.Clone(), nil, nil
}

// Stop stops watching path: the change watcher goes first, local registry
// truth is cleared next, and external cleanup is best-effort last.
func (o *Orchestrator) Stop(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("project path is empty")
	}
	canonical := overlap.Canonicalize(path)

	unlock := o.lockPath(canonical)
	defer unlock()

	o.stopChangeWatcher(canonical)

	p := o.registry.Get(canonical)
	if p == nil {
		return fmt.Errorf("%s is not being watched", canonical)
	}

	// Local truth first: the project is stopped from this layer's point of
	// view regardless of how external cleanup goes.
	o.registry.Remove(canonical)
	o.bus.Publish(Notification{Type: NotifyProjectListChanged})

	switch p.Mode {
	case project.SessionManaged:
		o.mu.Lock()
		handle := o.sessions[canonical]
		delete(o.sessions, canonical)
		o.mu.Unlock()
		if err := o.spawner.Stop(handle); err != nil {
			log.Printf("Warning: failed to stop session process for %s: %v", canonical, err)
		}
	case project.DaemonManaged:
		if err := o.eng.Deregister(ctx, canonical); err != nil {
			log.Printf("Warning: daemon deregistration failed for %s: %v", canonical, err)
			o.terminateByStatusLookup(ctx, canonical)
		}
	}
	return nil
}

// RemoveAndRewatch stops each path in remove, then watches newPath with
// overlap checking disabled: the caller resolved the conflict by choosing
// removal.
func (o *Orchestrator) RemoveAndRewatch(ctx context.Context, remove []string, newPath string, opts WatchOptions) (*project.Project, error) {
	for _, path := range remove {
		if err := o.Stop(ctx, path); err != nil {
			log.Printf("Warning: failed to stop %s during rewatch: %v", path, err)
		}
	}

	opts.AllowOverlap = true
	p, _, err := o.Watch(ctx, newPath, opts)
	return p, err
}

// ForceBackup triggers an immediate backup of path and resets its countdown
// on success.
func (o *Orchestrator) ForceBackup(ctx context.Context, path, description string) error {
	canonical := overlap.Canonicalize(path)
	if o.registry.Get(canonical) == nil {
		return fmt.Errorf("%s is not being watched", canonical)
	}

	o.bus.Publish(Notification{Type: NotifyBackupStarted, Path: canonical})
	if err := o.eng.ForceBackup(ctx, canonical, description); err != nil {
		return fmt.Errorf("force backup failed for %s: %w", canonical, err)
	}

	o.markBackupCompleted(canonical, o.now())
	return nil
}

// StopEngine asks the engine daemon to shut down.
func (o *Orchestrator) StopEngine(ctx context.Context) error {
	return o.eng.StopEngine(ctx)
}

// FileChanges returns the recent file-change ledger for path, most recent
// first.
func (o *Orchestrator) FileChanges(path string) ([]project.FileChange, error) {
	canonical := overlap.Canonicalize(path)
	p := o.registry.Get(canonical)
	if p == nil {
		return nil, fmt.Errorf("%s is not being watched", canonical)
	}
	return p.FileChanges, nil
}

// ListProjects returns the reconciled project snapshot.
func (o *Orchestrator) ListProjects(ctx context.Context) []*project.Project {
	return o.Snapshot(ctx)
}

// StartPolling runs the reconciliation loop until ctx is cancelled or Close
// is called.
func (o *Orchestrator) StartPolling(ctx context.Context) {
	pollCtx, cancel := context.WithCancel(ctx)
	o.pollCancel = cancel
	o.pollDone = make(chan struct{})

	go func() {
		defer close(o.pollDone)
		ticker := time.NewTicker(o.cfg.PollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				o.Snapshot(pollCtx)
			}
		}
	}()
}

// Close stops polling, every change watcher, and every owned session
// process, then closes the notification bus.
func (o *Orchestrator) Close() {
	if o.pollCancel != nil {
		o.pollCancel()
		<-o.pollDone
		o.pollCancel = nil
	}

	o.mu.Lock()
	watchers := o.watchers
	sessions := o.sessions
	o.watchers = make(map[string]*ledger.Watcher)
	o.sessions = make(map[string]*session.Handle)
	o.mu.Unlock()

	for path, w := range watchers {
		if err := w.Close(); err != nil {
			log.Printf("Warning: failed to close change watcher for %s: %v", path, err)
		}
	}
	for path, h := range sessions {
		if err := o.spawner.Stop(h); err != nil {
			log.Printf("Warning: failed to stop session process for %s: %v", path, err)
		}
	}

	o.bus.Close()
}

// lockPath serializes operations on one canonical path.
func (o *Orchestrator) lockPath(path string) func() {
	o.mu.Lock()
	lock, ok := o.pathLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		o.pathLocks[path] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (o *Orchestrator) spawnSession(path string, p *project.Project, opts WatchOptions) error {
	interval := opts.IntervalMinutes
	if interval <= 0 {
		interval = o.cfg.Watch.IntervalMinutes
	}

	handle, err := o.spawner.Spawn(path, session.Options{
		IntervalMinutes: interval,
		ExcludeGit:      opts.ExcludeGit,
	})
	if err != nil {
		return fmt.Errorf("failed to spawn session watch for %s: %w", path, err)
	}

	p.Mode = project.SessionManaged
	p.PID = handle.PID

	o.mu.Lock()
	o.sessions[path] = handle
	o.mu.Unlock()
	return nil
}

// startChangeWatcher wires a ledger watcher whose publishes touch only this
// project's ledger field and the bus, never the wider registry state.
func (o *Orchestrator) startChangeWatcher(path string) error {
	matcher := ledger.NewIgnoreMatcher(o.cfg.Ignore)
	w, err := ledger.NewWatcher(path, matcher, o.cfg.SettleDelay(), func(entries []project.FileChange) {
		o.registry.Update(path, func(p *project.Project) {
			p.FileChanges = entries
		})
		o.bus.Publish(Notification{Type: NotifyFileChanged, Path: path, FileChanges: entries})
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Close()
		return err
	}

	o.mu.Lock()
	o.watchers[path] = w
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) stopChangeWatcher(path string) {
	o.mu.Lock()
	w := o.watchers[path]
	delete(o.watchers, path)
	o.mu.Unlock()

	if w != nil {
		if err := w.Close(); err != nil {
			log.Printf("Warning: failed to close change watcher for %s: %v", path, err)
		}
	}
}

// terminateByStatusLookup is the best-effort secondary stop path: when
// deregistration fails, find the engine-reported PID for the path and
// terminate it directly.
func (o *Orchestrator) terminateByStatusLookup(ctx context.Context, path string) {
	stubs, err := o.eng.Status(ctx)
	if err != nil {
		log.Printf("Warning: status lookup for secondary stop of %s failed: %v", path, err)
		return
	}
	for _, stub := range stubs {
		if overlap.Canonicalize(stub.Path) != path || stub.PID <= 0 {
			continue
		}
		if err := session.TerminatePID(stub.PID); err != nil {
			log.Printf("Warning: failed to terminate engine watcher PID %d for %s: %v", stub.PID, path, err)
		}
		return
	}
	log.Printf("Warning: no engine-reported PID found for %s during secondary stop", path)
}

// markBackupCompleted unconditionally resets the backup schedule for path
// and announces the completion.
func (o *Orchestrator) markBackupCompleted(path string, at time.Time) {
	o.registry.Update(path, func(p *project.Project) {
		p.LastBackupAt = at
		p.NextBackupAt = NextBackupAt(p)
		p.Overdue = false
	})
	o.bus.Publish(Notification{Type: NotifyBackupCompleted, Path: path})
}
