package ticksched

import "sync"

// queueChunkSize is the number of task slots per node in the taskQueue
// linked list. 128 pointers plus overhead is ~1KB per chunk.
const queueChunkSize = 128

// taskQueue is a chunked linked-list FIFO used for the priority, microtask,
// poll, and check stores. Dequeue order equals sequence order because every
// enqueue appends at the tail.
//
// Thread Safety: this struct is NOT thread-safe. The caller must provide
// external synchronization (the Scheduler's mutex).
//
// Performance rationale:
//   - Fixed-size arrays (queueChunkSize) provide cache locality and
//     amortize allocations.
//   - sync.Pool chunk recycling prevents GC thrashing under high
//     self-scheduling throughput.
//
// Cancelled tasks are tombstoned in place rather than removed; Pop returns
// them and the caller skips them. The live counter excludes tombstones so
// emptiness checks ignore cancelled entries.
type taskQueue struct {
	head   *queueChunk
	tail   *queueChunk
	length int
	live   int
}

// queueChunkPool prevents GC thrashing under high load.
var queueChunkPool = sync.Pool{
	New: func() any {
		return &queueChunk{}
	},
}

// queueChunk is a fixed-size node in the chunked linked-list. It uses
// readPos/writePos cursors for O(1) push/pop without shifting.
type queueChunk struct {
	tasks    [queueChunkSize]*task
	next     *queueChunk
	readPos  int // first unread slot
	writePos int // first unused slot
}

func newQueueChunk() *queueChunk {
	c := queueChunkPool.Get().(*queueChunk)
	c.readPos = 0
	c.writePos = 0
	c.next = nil
	return c
}

// returnQueueChunk returns an exhausted chunk to the pool, clearing task
// slots so retained closures can be collected.
func returnQueueChunk(c *queueChunk) {
	for i := 0; i < c.writePos; i++ {
		c.tasks[i] = nil
	}
	c.readPos = 0
	c.writePos = 0
	c.next = nil
	queueChunkPool.Put(c)
}

// push appends a task to the queue.
func (q *taskQueue) push(t *task) {
	if q.tail == nil {
		q.tail = newQueueChunk()
		q.head = q.tail
	}

	if q.tail.writePos == len(q.tail.tasks) {
		next := newQueueChunk()
		q.tail.next = next
		q.tail = next
	}

	q.tail.tasks[q.tail.writePos] = t
	q.tail.writePos++
	q.length++
	q.live++
}

// pop removes and returns the oldest entry, tombstones included.
// Returns nil if the queue is empty.
func (q *taskQueue) pop() *task {
	if q.head == nil {
		return nil
	}

	if q.head.readPos >= q.head.writePos {
		if q.head == q.tail {
			// Only chunk and fully consumed - reset cursors for reuse.
			q.head.readPos = 0
			q.head.writePos = 0
			return nil
		}
		oldHead := q.head
		q.head = q.head.next
		returnQueueChunk(oldHead)
	}

	if q.head.readPos >= q.head.writePos {
		return nil
	}

	t := q.head.tasks[q.head.readPos]
	q.head.tasks[q.head.readPos] = nil
	q.head.readPos++
	q.length--
	if !t.cancelled {
		q.live--
	}

	if q.head.readPos >= q.head.writePos {
		if q.head == q.tail {
			q.head.readPos = 0
			q.head.writePos = 0
			return t
		}
		oldHead := q.head
		q.head = q.head.next
		returnQueueChunk(oldHead)
	}

	return t
}

// noteCancelled records that an entry still physically present in the queue
// has been tombstoned.
func (q *taskQueue) noteCancelled() {
	q.live--
}

// len returns the physical queue length, tombstones included. Phase
// snapshots use this so that popping exactly len entries never reaches
// tasks enqueued mid-phase.
func (q *taskQueue) len() int {
	return q.length
}

// empty reports whether the queue holds no live (non-tombstoned) entries.
func (q *taskQueue) empty() bool {
	return q.live == 0
}
