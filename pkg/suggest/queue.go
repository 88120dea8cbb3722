package suggest

import (
	"container/heap"

	"github.com/bastiangx/courseserve/pkg/graph"
)

// Mode is the traversal state of a queued frontier item.
type Mode uint8

const (
	// ModeMatching still consumes query characters against edge labels.
	ModeMatching Mode = iota
	// ModeAdvance has matched the query and walks toward the nearest record.
	ModeAdvance
)

func (m Mode) String() string {
	if m == ModeAdvance {
		return "advance"
	}
	return "matching"
}

// QueueItem is one pending frontier entry.
type QueueItem struct {
	Priority  int
	Node      graph.NodeID
	Remaining string
	Mode      Mode

	seq uint64
}

// Compile time check to ensure itemHeap satisfies the heap interface.
var _ heap.Interface = (*itemHeap)(nil)

type itemHeap []QueueItem

func (h itemHeap) Len() int { return len(h) }

// Less orders by ascending priority, then by insertion order.
func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(QueueItem)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = QueueItem{}
	*h = old[:n-1]
	return item
}

// TraversalQueue is a min-priority queue with FIFO order among equal
// priorities. The zero value is ready to use.
type TraversalQueue struct {
	items itemHeap
	seq   uint64
}

// Enqueue adds item.
func (q *TraversalQueue) Enqueue(item QueueItem) {
	item.seq = q.seq
	q.seq++
	heap.Push(&q.items, item)
}

// Dequeue removes and returns the front item.
func (q *TraversalQueue) Dequeue() (QueueItem, bool) {
	if len(q.items) == 0 {
		return QueueItem{}, false
	}
	return heap.Pop(&q.items).(QueueItem), true
}

// Peek returns the front item without removing it.
func (q *TraversalQueue) Peek() (QueueItem, bool) {
	if len(q.items) == 0 {
		return QueueItem{}, false
	}
	return q.items[0], true
}

// IsEmpty reports whether nothing is pending.
func (q *TraversalQueue) IsEmpty() bool { return len(q.items) == 0 }

// Len returns the number of pending items.
func (q *TraversalQueue) Len() int { return len(q.items) }

// Reset drops every pending item and keeps the allocated storage, zeroed.
func (q *TraversalQueue) Reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.seq = 0
}
