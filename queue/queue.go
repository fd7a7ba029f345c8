package queue

// Queue is a generic FIFO queue that can hold any type.
// It is not safe for concurrent use; callers guard it with their own lock.
type Queue[T any] struct {
	items []T
}

// New creates and returns a new Queue instance.
func New[T any]() *Queue[T] {
	return &Queue[T]{items: []T{}}
}

// Enqueue adds an element to the end of the queue.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Items returns a copy of the queued elements in FIFO order.
func (q *Queue[T]) Items() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Clear drops every element from the queue.
func (q *Queue[T]) Clear() {
	q.items = []T{}
}
