package push

import (
	"context"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
)

// queueWarnDepth is the backlog size at which a subscriber that is not
// draining gets flagged in the log. The queue itself is unbounded; a stalled
// subscriber accumulates memory until its stream ends.
const queueWarnDepth = 1024

// Queue is the per-subscriber event buffer behind an update stream. Deliver
// never blocks; Next blocks until an event arrives or ctx ends.
type Queue struct {
	mu     sync.Mutex
	events []Event
	ready  chan struct{}
	closed bool
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Deliver enqueues ev and wakes the drain loop. Returns false after Close.
func (q *Queue) Deliver(ev Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.events = append(q.events, ev)
	depth := len(q.events)
	q.mu.Unlock()

	if depth == queueWarnDepth {
		jww.WARN.Printf("push queue backlog reached %d events; subscriber is not draining", depth)
	}

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Next returns the oldest queued event, waiting if the queue is empty.
// It returns ctx.Err() once the context ends.
func (q *Queue) Next(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events = q.events[1:]
			q.mu.Unlock()
			return ev, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

// Close stops the queue from accepting further events. Queued events are
// discarded; the subscriber is gone.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.events = nil
	q.mu.Unlock()
}
