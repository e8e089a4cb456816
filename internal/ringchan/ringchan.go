// Package ringchan provides a bounded channel with overwrite-oldest
// semantics, used to publish state snapshots and device events without ever
// blocking the producer.
package ringchan

// Ring wraps a buffered channel. When the buffer is full a send discards
// the oldest element, so a slow consumer only loses intermediate values,
// never stalls a producer.
type Ring[T any] struct {
	ch chan T
}

// New creates a Ring with the given capacity.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &Ring[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel. Consumers can range over
// it until Close.
func (r *Ring[T]) C() <-chan T {
	return r.ch
}

// Send inserts v, discarding the oldest buffered element if the ring is
// full. It never blocks.
func (r *Ring[T]) Send(v T) {
	select {
	case r.ch <- v:
	default:
		select {
		case <-r.ch: // drop oldest
		default:
		}
		r.ch <- v
	}
}

// TryReceive attempts a non-blocking receive.
func (r *Ring[T]) TryReceive() (v T, ok bool) {
	select {
	case v, ok = <-r.ch:
		return
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int { return len(r.ch) }

// Close closes the ring. After Close, Send panics.
func (r *Ring[T]) Close() { close(r.ch) }
