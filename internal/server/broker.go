package server

import (
	"encoding/json"
	"sync"

	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/notify"
	"github.com/chomp/streetartctf/internal/syncer"
)

// Event types pushed to SSE and WebSocket clients.
const (
	EventCapture       = "capture"
	EventSector        = "sector"
	EventNotification  = "notification"
	EventCaptureResult = "capture_result"
	EventPong          = "pong"
	EventError         = "error"
)

// Event is the envelope every pushed message is wrapped in.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Message is an encoded Event ready to be written to a client.
type Message struct {
	Type string
	Data []byte
}

func encodeEvent(ev Event) (Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: ev.Type, Data: data}, nil
}

// Broker is an in-process pub/sub fanning events out to every connected
// client.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Message]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan Message]struct{}),
	}
}

// Subscribe returns a channel that receives every published event.
func (b *Broker) Subscribe() chan Message {
	ch := make(chan Message, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan Message) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *Broker) Publish(ev Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		return
	}
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func (b *Broker) PublishCapture(ev game.CaptureEvent) {
	b.Publish(Event{Type: EventCapture, Data: ev})
}

func (b *Broker) PublishSector(sc syncer.SectorChange) {
	b.Publish(Event{Type: EventSector, Data: sc})
}

func (b *Broker) PublishNotification(ev notify.Event) {
	b.Publish(Event{Type: EventNotification, Data: ev})
}
