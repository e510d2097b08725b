package queue

// Bounded is a FIFO queue holding at most Capacity items, built on LockFreeQueue.
//
// It is designed for one producer and one consumer: the capacity bound holds
// because only the producer enqueues, while the consumer may dequeue at any
// time. PutOverwrite additionally dequeues from the producer side, which the
// underlying lock-free queue supports.
type Bounded[T any] struct {
	q        Queue[T]
	capacity int
}

// NewBounded creates a bounded queue. A capacity below one is raised to one.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Bounded[T]{q: NewLockFreeQueue[T](), capacity: capacity}
}

// Capacity returns the maximum number of queued items.
func (b *Bounded[T]) Capacity() int {
	return b.capacity
}

// Len returns the number of queued items.
func (b *Bounded[T]) Len() int {
	return b.q.Length()
}

// IsFull reports whether a TryPut would currently fail.
func (b *Bounded[T]) IsFull() bool {
	return b.q.Length() >= b.capacity
}

// TryPut enqueues item unless the queue is full. It never blocks.
func (b *Bounded[T]) TryPut(item T) bool {
	if b.IsFull() {
		return false
	}
	b.q.Enqueue(item)

	return true
}

// PutOverwrite enqueues item, first evicting the oldest item when the queue is full.
// The evicted item, if any, is returned so the caller can account for it.
func (b *Bounded[T]) PutOverwrite(item T) (evicted T, didEvict bool) {
	for b.IsFull() {
		old, ok := b.q.Dequeue()
		if ok {
			evicted, didEvict = old, true
		}
	}
	b.q.Enqueue(item)

	return evicted, didEvict
}

// Get dequeues the oldest item. It never blocks.
func (b *Bounded[T]) Get() (T, bool) {
	return b.q.Dequeue()
}
