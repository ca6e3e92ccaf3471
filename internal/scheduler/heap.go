package scheduler

import (
	"container/heap"
	"time"
)

// deadlineHeap implements container/heap.Interface for deadline-bound
// entries, sorted by deadline (earliest first) and then by enqueue order.
type deadlineHeap []entry

func (h deadlineHeap) Len() int { return len(h) }
func (h deadlineHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h deadlineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return x
}

// heapPush adds an entry to the heap, maintaining heap invariant.
func heapPush(h *deadlineHeap, e entry) {
	heap.Push(h, e)
}

// heapPop removes and returns the entry with the earliest deadline.
// Panics if the heap is empty.
func heapPop(h *deadlineHeap) entry {
	return heap.Pop(h).(entry)
}

// popDue removes every entry whose deadline is not after now and returns
// them in deadline order.
func popDue(h *deadlineHeap, now time.Time) []entry {
	var due []entry
	for h.Len() > 0 && !(*h)[0].deadline.After(now) {
		due = append(due, heapPop(h))
	}
	return due
}
