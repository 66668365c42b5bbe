package notify

import (
	"testing"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

func recv(t *testing.T, ch <-chan Event, within time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(within):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPushAutoDismiss(t *testing.T) {
	q := NewQueue(30 * time.Millisecond)
	defer q.Close()

	events, cancel := q.Subscribe()
	defer cancel()

	id := q.Push(Notification{ArtID: "art-001", Team: chomp.TeamRed, Points: 250})
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	ev := recv(t, events, time.Second)
	if ev.Type != Shown || ev.Notification.ArtID != "art-001" {
		t.Errorf("first event = %+v, want shown art-001", ev)
	}
	if len(q.Active()) != 1 {
		t.Errorf("active = %d, want 1", len(q.Active()))
	}

	ev = recv(t, events, time.Second)
	if ev.Type != Dismissed || ev.Notification.ID != id {
		t.Errorf("second event = %+v, want dismissed %d", ev, id)
	}
	if n := len(q.Active()); n != 0 {
		t.Errorf("active after dismissal = %d, want 0", n)
	}
}

func TestDismissEarly(t *testing.T) {
	q := NewQueue(time.Hour)
	defer q.Close()

	a := q.Push(Notification{ArtID: "a"})
	b := q.Push(Notification{ArtID: "b"})

	if !q.Dismiss(a) {
		t.Fatal("Dismiss(a) = false")
	}
	if q.Dismiss(a) {
		t.Error("second Dismiss(a) = true")
	}
	active := q.Active()
	if len(active) != 1 || active[0].ID != b {
		t.Errorf("active = %+v, want only %d", active, b)
	}
}

func TestDefaultDelay(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	if q.delay != DefaultDismissAfter {
		t.Errorf("delay = %v, want %v", q.delay, DefaultDismissAfter)
	}
}

func TestCloseStopsTimers(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	events, cancel := q.Subscribe()
	defer cancel()

	q.Push(Notification{ArtID: "a"})
	recv(t, events, time.Second)
	q.Close()

	select {
	case ev := <-events:
		t.Errorf("event after Close: %+v", ev)
	case <-time.After(80 * time.Millisecond):
	}

	if id := q.Push(Notification{ArtID: "b"}); id != 0 {
		t.Errorf("push after close returned %d", id)
	}
}

func TestUnsubscribe(t *testing.T) {
	q := NewQueue(time.Hour)
	defer q.Close()

	events, cancel := q.Subscribe()
	cancel()
	cancel()

	q.Push(Notification{ArtID: "a"})
	select {
	case ev := <-events:
		t.Errorf("unsubscribed channel got %+v", ev)
	default:
	}
}
