package orchestrator

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wardenhq/warden/project"
)

type NotificationType string

const (
	NotifyProjectListChanged NotificationType = "project-list-changed"
	NotifyBackupStarted      NotificationType = "backup-started"
	NotifyBackupCompleted    NotificationType = "backup-completed"
	NotifyFileChanged        NotificationType = "file-changed"
)

// Notification is one event emitted to subscribers. Path is empty for
// process-wide notifications.
type Notification struct {
	Type        NotificationType
	Path        string
	Time        time.Time
	FileChanges []project.FileChange // populated for NotifyFileChanged
}

// Bus fans notifications out to subscribers. Delivery is best-effort: a
// subscriber that stops draining its channel loses events rather than
// blocking watcher callbacks or the poll loop.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]chan Notification
	closed bool
}

const subscriberBuffer = 64

func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan Notification)}
}

// Subscribe registers a new subscriber and returns its token and channel.
func (b *Bus) Subscribe() (string, <-chan Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Notification, subscriberBuffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers a notification to all subscribers without blocking.
func (b *Bus) Publish(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- n:
		default:
			log.Printf("Subscriber %s channel full, dropping %s notification", id, n.Type)
		}
	}
}

// Close closes all subscriber channels. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
