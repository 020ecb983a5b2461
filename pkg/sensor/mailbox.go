package sensor

// mailbox holds the most recent value produced by a reader goroutine.
// Put overwrites an unread value; Take never blocks.
type mailbox[T any] struct {
	ch chan T
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, replacing any unread value. Only one goroutine may Put.
func (m *mailbox[T]) Put(v T) {
	select {
	case <-m.ch:
	default:
	}
	m.ch <- v
}

// Take returns the unread value, or ErrNoData.
func (m *mailbox[T]) Take() (T, error) {
	select {
	case v := <-m.ch:
		return v, nil
	default:
		var zero T
		return zero, ErrNoData
	}
}
