// Package notify keeps the short-lived capture notifications shown to
// players and dismisses each one after a fixed delay.
package notify

import (
	"sync"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

const DefaultDismissAfter = 5 * time.Second

// Notification announces that a piece changed hands.
type Notification struct {
	ID           int64        `json:"id"`
	ArtID        string       `json:"artId"`
	ArtName      string       `json:"artName"`
	Area         string       `json:"area,omitempty"`
	Team         chomp.TeamID `json:"team"`
	PlayerName   string       `json:"playerName,omitempty"`
	Points       int          `json:"points"`
	Streak       int          `json:"streak"`
	IsRecapture  bool         `json:"isRecapture"`
	PreviousTeam chomp.TeamID `json:"previousTeam,omitempty"`
	At           time.Time    `json:"at"`
}

type EventType string

const (
	Shown     EventType = "shown"
	Dismissed EventType = "dismissed"
)

type Event struct {
	Type         EventType    `json:"type"`
	Notification Notification `json:"notification"`
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Queue holds the active notifications. It is safe for concurrent use.
type Queue struct {
	delay time.Duration

	mu     sync.Mutex
	nextID int64
	active []*entry
	subs   map[chan Event]struct{}
	closed bool
}

// NewQueue returns a queue that dismisses notifications after delay.
// A non-positive delay uses DefaultDismissAfter.
func NewQueue(delay time.Duration) *Queue {
	if delay <= 0 {
		delay = DefaultDismissAfter
	}
	return &Queue{
		delay: delay,
		subs:  make(map[chan Event]struct{}),
	}
}

// Push shows n and schedules its dismissal. The assigned id is returned.
// Pushing to a closed queue is a no-op and returns 0.
func (q *Queue) Push(n Notification) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}

	q.nextID++
	n.ID = q.nextID
	if n.At.IsZero() {
		n.At = time.Now()
	}
	id := n.ID
	e := &entry{n: n}
	e.timer = time.AfterFunc(q.delay, func() { q.Dismiss(id) })
	q.active = append(q.active, e)
	q.publish(Event{Type: Shown, Notification: n})
	return id
}

// Dismiss removes a notification early. It reports whether it was active.
func (q *Queue) Dismiss(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.active {
		if e.n.ID != id {
			continue
		}
		e.timer.Stop()
		q.active = append(q.active[:i], q.active[i+1:]...)
		q.publish(Event{Type: Dismissed, Notification: e.n})
		return true
	}
	return false
}

// Active returns the notifications currently showing, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.active))
	for i, e := range q.active {
		out[i] = e.n
	}
	return out
}

// Subscribe returns a channel of queue events and a func that releases it.
// Slow subscribers miss events rather than block the queue.
func (q *Queue) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	q.mu.Lock()
	q.subs[ch] = struct{}{}
	q.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.subs, ch)
			q.mu.Unlock()
		})
	}
}

// Close stops every pending dismissal timer. Active notifications are
// dropped without a dismissed event.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for _, e := range q.active {
		e.timer.Stop()
	}
	q.active = nil
}

// publish must be called with q.mu held.
func (q *Queue) publish(ev Event) {
	for ch := range q.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
