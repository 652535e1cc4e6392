package engine

import (
	"sync"

	"github.com/timelens/timelens/internal/event"
)

// changeQueue is a thread-safe FIFO queue of store changes.
//
// The queue is unbounded: store listeners run while the mutating guard
// is held and must never block. Thread-safety covers enqueuing from any
// goroutine while the dispatcher's Run loop dequeues.
//
// A buffered signal channel (size 1) coalesces availability signals so
// the Run loop can wait with a select against its context.
type changeQueue struct {
	mu      sync.Mutex
	changes []event.Change
	closed  bool
	signal  chan struct{}
}

func newChangeQueue() *changeQueue {
	return &changeQueue{
		changes: make([]event.Change, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a change to the back of the queue.
// Returns false if the queue is closed.
func (q *changeQueue) Enqueue(ch event.Change) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.changes = append(q.changes, ch)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front change without blocking.
// Returns (zero, false) if the queue is empty.
func (q *changeQueue) TryDequeue() (event.Change, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.changes) == 0 {
		return event.Change{}, false
	}
	ch := q.changes[0]

	// Zero the slot so the backing array does not retain the change's
	// path slice until reallocation.
	q.changes[0] = event.Change{}
	if len(q.changes) == 1 {
		q.changes = q.changes[:0]
	} else {
		q.changes = q.changes[1:]
	}
	return ch, true
}

// Wait returns the availability signal channel for select loops.
func (q *changeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Close marks the queue closed. Enqueued changes may still be drained.
func (q *changeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Closed reports whether the queue is closed and fully drained.
func (q *changeQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.changes) == 0
}
