package orchestrator

import (
	"testing"
	"time"
)

func TestBusPublishAndUnsubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	id, ch := b.Subscribe()
	b.Publish(Notification{Type: NotifyProjectListChanged})

	select {
	case n := <-ch:
		if n.Type != NotifyProjectListChanged {
			t.Errorf("unexpected type %s", n.Type)
		}
		if n.Time.IsZero() {
			t.Error("publish must stamp a time")
		}
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	b.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Error("channel must be closed after unsubscribe")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()
	b.Publish(Notification{Type: NotifyBackupStarted, Path: "/srv/docs"})

	for _, ch := range []<-chan Notification{ch1, ch2} {
		select {
		case n := <-ch:
			if n.Path != "/srv/docs" {
				t.Errorf("unexpected path %s", n.Path)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the notification")
		}
	}
}

func TestBusSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBus()
	defer b.Close()

	b.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			b.Publish(Notification{Type: NotifyFileChanged})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBusCloseIdempotent(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("channel must be closed after bus close")
	}

	// Publishing and subscribing after close must not panic.
	b.Publish(Notification{Type: NotifyProjectListChanged})
	_, ch2 := b.Subscribe()
	if _, ok := <-ch2; ok {
		t.Error("post-close subscription must yield a closed channel")
	}
}
