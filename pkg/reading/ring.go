package reading

import "iter"

// DefaultHistoryLength is the number of snapshots kept by default.
const DefaultHistoryLength = 60

// Ring is a fixed-capacity history of composite readings, ordered oldest first.
// Push shifts entries toward index 0 and appends at the end. The very first push
// back-fills every slot, so Len equals Cap from then on.
type Ring struct {
	buf    []Composite
	filled bool
}

// NewRing creates an empty ring. A non-positive capacity falls back to DefaultHistoryLength.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultHistoryLength
	}
	return &Ring{buf: make([]Composite, capacity)}
}

// Push appends r, evicting the oldest entry.
func (h *Ring) Push(r Composite) {
	if !h.filled {
		for i := range h.buf {
			h.buf[i] = r
		}
		h.filled = true
		return
	}
	copy(h.buf, h.buf[1:])
	h.buf[len(h.buf)-1] = r
}

// Len returns the number of valid entries: zero before the first push, Cap after.
func (h *Ring) Len() int {
	if !h.filled {
		return 0
	}
	return len(h.buf)
}

// Cap returns the configured capacity.
func (h *Ring) Cap() int {
	return len(h.buf)
}

// At returns the i-th entry, oldest first. It panics if i is out of range.
func (h *Ring) At(i int) Composite {
	if i < 0 || i >= h.Len() {
		panic("reading: ring index out of range")
	}
	return h.buf[i]
}

// Latest returns the newest entry and false if nothing was pushed yet.
func (h *Ring) Latest() (Composite, bool) {
	if !h.filled {
		return Composite{}, false
	}
	return h.buf[len(h.buf)-1], true
}

// All yields the entries oldest to newest. The sequence can be iterated any number of times.
func (h *Ring) All() iter.Seq[Composite] {
	return func(yield func(Composite) bool) {
		for i := range h.Len() {
			if !yield(h.buf[i]) {
				return
			}
		}
	}
}

// Series extracts one channel of the history, oldest first.
// Destination-based: reuses dst if it has sufficient capacity.
func (h *Ring) Series(dst []float32, field func(Composite) float32) []float32 {
	dst = dst[:0]
	for r := range h.All() {
		dst = append(dst, field(r))
	}
	return dst
}
