package ledger

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wardenhq/warden/project"
)

// PublishFunc receives the full ordered ledger after each recorded change,
// most recent first.
type PublishFunc func(entries []project.FileChange)

// Watcher feeds one project's ledger from filesystem events under the
// project root. Writes are settled: a file is recorded only after it has been
// quiet for the settle delay, so an in-progress write is not reported early.
//
// Close is synchronous with respect to publishing: once Close returns, the
// publish callback will not be invoked again.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	ignore  *IgnoreMatcher
	settle  time.Duration
	ledger  *Ledger
	publish PublishFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(root string, ignoreMatcher *IgnoreMatcher, settle time.Duration, publish PublishFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:    root,
		fsw:     fsw,
		ignore:  ignoreMatcher,
		settle:  settle,
		ledger:  New(),
		publish: publish,
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}, nil
}

// Start registers the project tree with the filesystem watcher and begins
// processing events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Close stops the watcher. After Close returns no further ledger publishes
// occur; a settle timer that fires mid-close discards its event instead.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if !info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if w.ignore.ShouldSkipDir(relPath) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error for %s: %v", w.root, err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	relPath, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	if w.ignore.ShouldIgnore(relPath) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		// New directory: start watching its subtree.
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				log.Printf("Failed to add new directory %s: %v", event.Name, err)
			}
		}
		return
	}

	w.settleEvent(event.Name, relPath)
}

// settleEvent resets the per-file settle timer. The change is recorded only
// once the file has been quiet for the settle delay.
func (w *Watcher) settleEvent(absPath, relPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[absPath]; ok {
		timer.Stop()
	}
	w.timers[absPath] = time.AfterFunc(w.settle, func() {
		w.record(absPath, relPath)
	})
}

func (w *Watcher) record(absPath, relPath string) {
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return
	}

	// Publishing under the mutex is what makes Close synchronous: a timer
	// that lost the race observes closed and discards its event.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	delete(w.timers, absPath)

	entries := w.ledger.Upsert(filepath.ToSlash(relPath), info.ModTime())
	if w.publish != nil {
		w.publish(entries)
	}
}
