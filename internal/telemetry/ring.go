package telemetry

// Ring is a fixed-capacity FIFO. Its backing array is allocated once; when
// full, Push overwrites the oldest element.
type Ring[T any] struct {
	buf   []T
	start int // index of the oldest element
	n     int
}

// NewRing returns an empty ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.n < r.Cap() {
		r.buf[(r.start+r.n)%r.Cap()] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % r.Cap()
}

// Len returns the number of retained elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th retained element, 0 being the oldest.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.n {
		panic("telemetry: ring index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

// Values returns a copy of the retained elements, oldest first. The result
// is never nil.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
