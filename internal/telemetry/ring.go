package telemetry

// ringBuffer is a fixed-capacity FIFO buffer. Callers hold the Metrics lock;
// the buffer itself is not synchronized.
type ringBuffer[T any] struct {
	entries  []T
	head     int
	size     int
	capacity int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity <= 0 {
		capacity = 50
	}
	return &ringBuffer[T]{
		entries:  make([]T, capacity),
		capacity: capacity,
	}
}

// add appends an item, evicting the oldest when full.
func (b *ringBuffer[T]) add(item T) {
	b.entries[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// items returns the contents oldest first.
func (b *ringBuffer[T]) items() []T {
	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.entries[:b.size])
	} else {
		copy(result, b.entries[b.head:])
		copy(result[b.capacity-b.head:], b.entries[:b.head])
	}
	return result
}
