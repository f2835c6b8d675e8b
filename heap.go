package ticksched

// timerHeap is a min-heap of timer tasks ordered by (deadline, sequence):
// earliest deadline first, equal deadlines broken by insertion order. It
// implements heap.Interface; heapIndex is maintained by Swap so cancellation
// can use heap.Remove in O(log n).
//
// Thread Safety: NOT thread-safe; guarded by the Scheduler's mutex.
type timerHeap []*task

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*task)
	t.heapIndex = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.heapIndex = -1
	*h = old[:n-1]
	return t
}

// peek returns the earliest pending timer without removing it, or nil if
// the heap is empty.
func (h timerHeap) peek() *task {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
