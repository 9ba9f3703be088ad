// Package queue provides the FIFO buffer used by the database writer.
package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO. Failed write batches go back to
// the front with PushFront so record order is kept.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// PushFront puts items back at the head, in the given order.
func (q *Queue[T]) PushFront(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]T, 0, len(items)+len(q.items))
	merged = append(merged, items...)
	q.items = append(merged, q.items...)
}

// Pop removes and returns the first item. ok is false if the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Take removes and returns up to n items from the head.
func (q *Queue[T]) Take(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	n = min(n, len(q.items))
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, q.items[:n])
	q.items = q.items[n:]
	return out
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Drain returns all items and clears the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}
