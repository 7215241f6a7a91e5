package scheduler

import "sync"

// Queue is an ordered, deduplicating set of links awaiting resolution.
// Pop is atomic, so concurrent workers never receive the same link.
type Queue struct {
	mu    sync.Mutex
	items []string
	seen  map[string]struct{}
}

// NewQueue builds an empty Queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]struct{})}
}

// Add appends l unless it was already added. It reports whether l was new.
func (q *Queue) Add(l string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[l]; ok {
		return false
	}
	q.seen[l] = struct{}{}
	q.items = append(q.items, l)
	return true
}

// Pop removes and returns the oldest link. ok is false once the queue is empty.
func (q *Queue) Pop() (l string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	l = q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return l, true
}

// Len reports how many links are still waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
