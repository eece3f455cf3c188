package queue

import (
	"container/heap"
	"sync"

	"github.com/google/uuid"
)

// Item is one queued task reference. Seq is the store's admission counter;
// it breaks priority ties so equal-priority tasks leave in submission order.
type Item struct {
	ID       uuid.UUID
	Priority int
	Seq      uint64
}

// Queue is a priority queue of pending task IDs. Higher priority pops first;
// equal priorities pop oldest first. All methods are safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items itemHeap
	index map[uuid.UUID]int
}

func New() *Queue {
	return &Queue{index: make(map[uuid.UUID]int)}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Push enqueues a task reference. Pushing an ID that is already queued is a
// no-op.
func (q *Queue) Push(it Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[it.ID]; ok {
		return
	}
	heap.Push(&wrapper{q}, it)
}

// Pop removes and returns the highest-priority item, or ok=false when the
// queue is empty.
func (q *Queue) Pop() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Item{}, false
	}
	it := heap.Pop(&wrapper{q}).(Item)
	return it, true
}

// Remove drops a specific task from the queue, wherever it sits. Reports
// whether the ID was present. Used by cancellation and the document-delete
// sweep.
func (q *Queue) Remove(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.index[id]
	if !ok {
		return false
	}
	heap.Remove(&wrapper{q}, i)
	return true
}

// Snapshot returns the queued items in no particular order. Diagnostics only.
func (q *Queue) Snapshot() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

type itemHeap []Item

// wrapper adapts Queue for container/heap while keeping the index map in
// step with every sift. Callers must hold q.mu.
type wrapper struct{ q *Queue }

func (w *wrapper) Len() int { return len(w.q.items) }

func (w *wrapper) Less(i, j int) bool {
	a, b := w.q.items[i], w.q.items[j]
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.Seq < b.Seq
}

func (w *wrapper) Swap(i, j int) {
	items := w.q.items
	items[i], items[j] = items[j], items[i]
	w.q.index[items[i].ID] = i
	w.q.index[items[j].ID] = j
}

func (w *wrapper) Push(x any) {
	it := x.(Item)
	w.q.items = append(w.q.items, it)
	w.q.index[it.ID] = len(w.q.items) - 1
}

func (w *wrapper) Pop() any {
	old := w.q.items
	n := len(old)
	it := old[n-1]
	w.q.items = old[:n-1]
	delete(w.q.index, it.ID)
	return it
}
