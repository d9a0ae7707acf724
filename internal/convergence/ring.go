package convergence

// Ring is a fixed-capacity FIFO window. Pushing onto a full ring overwrites
// the oldest element in O(1).
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

// NewRing returns an empty ring holding at most capacity elements.
// Capacities below 1 are raised to 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the ring is full.
// It reports whether an element was evicted.
func (r *Ring[T]) Push(v T) bool {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return false
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
	return true
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.n }

// capacity returns the fixed size of the buffer.
func (r *Ring[T]) capacity() int { return len(r.buf) }

// At returns the i-th element counting from the oldest. Negative indexes
// count back from the newest, so At(-1) is the most recent element.
func (r *Ring[T]) At(i int) T {
	if i < 0 {
		i += r.n
	}
	if i < 0 || i >= r.n {
		panic("convergence: ring index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

// Last returns up to k of the most recent elements, oldest first.
func (r *Ring[T]) Last(k int) []T {
	if k > r.n {
		k = r.n
	}
	out := make([]T, 0, k)
	for i := r.n - k; i < r.n; i++ {
		out = append(out, r.At(i))
	}
	return out
}

// Slice returns all elements, oldest first.
func (r *Ring[T]) Slice() []T {
	return r.Last(r.n)
}

// Clear empties the ring, keeping its capacity.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.start, r.n = 0, 0
}
