// Package queue provides an unbounded multi-producer/multi-consumer FIFO queue
// whose receive side blocks for a bounded amount of time.
package queue

import (
	"container/list"
	"sync"
	"time"
)

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
// The zero value is not usable; create queues with New.
type Queue[T any] struct {
	mtx    sync.Mutex
	items  *list.List
	notify chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items:  list.New(),
		notify: make(chan struct{}, 1),
	}
}

// Push appends value to the back of the queue. It never blocks on consumers.
func (q *Queue[T]) Push(value T) {
	q.mtx.Lock()
	q.items.PushBack(value)
	q.mtx.Unlock()

	q.signal()
}

// TryPop removes the front value without waiting.
// The second return value is false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	var zero T

	elem := q.items.Front()
	if elem == nil {
		return zero, false
	}

	q.items.Remove(elem)

	// Hand the wakeup on to another waiting consumer.
	if q.items.Len() > 0 {
		q.signal()
	}

	return elem.Value.(T), true //nolint:forcetypeassert // Only T is ever pushed
}

// Pop removes the front value, waiting up to timeout for one to arrive.
// The second return value is false if the wait expired with the queue still empty.
// A non-positive timeout behaves like TryPop.
func (q *Queue[T]) Pop(timeout time.Duration) (T, bool) {
	if value, ok := q.TryPop(); ok || timeout <= 0 {
		return value, ok
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notify:
			if value, ok := q.TryPop(); ok {
				return value, true
			}
		case <-timer.C:
			return q.TryPop()
		}
	}
}

// Len reports the number of queued values.
func (q *Queue[T]) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.items.Len()
}

// signal records that values may be available; it never blocks.
func (q *Queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
