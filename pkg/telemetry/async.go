package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned by Async.Emit when the point was dropped.
var ErrQueueFull = errors.New("telemetry queue full")

// ErrClosed is returned by Async.Emit after Close.
var ErrClosed = errors.New("telemetry sink closed")

// Async decouples a blocking sink from the caller. Points are queued and delivered by a
// single worker goroutine; when the queue is full the point is dropped.
type Async struct {
	sink Sink
	name string
	log  *slog.Logger

	queue chan Point
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts a worker delivering to sink. size is the queue length (64 when <= 0).
func NewAsync(name string, sink Sink, size int, log *slog.Logger) *Async {
	if size <= 0 {
		size = 64
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &Async{
		sink:  sink,
		name:  name,
		log:   log.With("sink", name),
		queue: make(chan Point, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Emit queues p without blocking.
func (a *Async) Emit(p Point) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return &WriteError{Sink: a.name, Channel: p.Channel, Err: ErrClosed}
	}

	select {
	case a.queue <- p:
		return nil
	default:
		return &WriteError{Sink: a.name, Channel: p.Channel, Err: ErrQueueFull}
	}
}

func (a *Async) run() {
	defer close(a.done)

	for p := range a.queue {
		if err := a.sink.Emit(p); err != nil {
			a.log.Error("write failed", "channel", p.Channel, "error", err)
		}
	}
}

// Close stops accepting points and waits for queued points to be delivered or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
