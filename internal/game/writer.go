package game

import (
	"context"
	"log/slog"
	"sync"
)

type remoteOp struct {
	ctx  context.Context
	name string
	fn   func(context.Context) error
}

// writer applies remote writes one at a time in submission order, so
// the shared store sees this engine's writes in the order they were
// made. A drain goroutine runs only while the queue is non-empty.
type writer struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []remoteOp
	running bool
	// idle is closed when the current drain goroutine exits.
	idle chan struct{}
}

// enqueue schedules fn. It never blocks on the store. fn outlives the
// request that started it.
func (w *writer) enqueue(ctx context.Context, name string, fn func(context.Context) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queue = append(w.queue, remoteOp{ctx: context.WithoutCancel(ctx), name: name, fn: fn})
	if !w.running {
		w.running = true
		w.idle = make(chan struct{})
		go w.drain(w.idle)
	}
}

func (w *writer) drain(idle chan struct{}) {
	defer close(idle)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue[0] = remoteOp{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if err := op.fn(op.ctx); err != nil {
			w.logger.Error("remote write failed", "op", op.name, "error", err)
		}
	}
}

// wait blocks until the queue is empty and the drain goroutine has
// exited.
func (w *writer) wait() {
	for {
		w.mu.Lock()
		running, idle := w.running, w.idle
		w.mu.Unlock()
		if !running {
			return
		}
		<-idle
	}
}
