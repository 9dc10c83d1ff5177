package station

import (
	"sync"
	"time"
)

// queue is an unbounded FIFO hand-off between the broker's network
// goroutine (producer) and the polling loop (consumer).
//
// Pushes never block and never apply back-pressure; a slow consumer
// accumulates memory rather than dropping messages. The 1-slot notify
// channel coalesces wakeups; the consumer re-checks the slice before
// waiting, so no signal is lost.
type queue struct {
	mu     sync.Mutex
	items  []RawMessage
	closed bool

	notify chan struct{}
}

func newQueue() *queue {
	return &queue{
		notify: make(chan struct{}, 1),
	}
}

// push appends a message without blocking. Messages pushed after close
// are dropped.
func (q *queue) push(msg RawMessage) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop removes the oldest message, waiting up to timeout for one to
// arrive. It returns false on timeout and after close.
func (q *queue) pop(timeout time.Duration) (RawMessage, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 && !q.closed {
			msg := q.items[0]
			q.items[0] = RawMessage{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return RawMessage{}, false
		}

		select {
		case <-q.notify:
		case <-timer.C:
			return RawMessage{}, false
		}
	}
}

// close wakes a waiting consumer and makes all subsequent operations
// no-ops. Pending messages are discarded.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// size returns the number of queued messages.
func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
