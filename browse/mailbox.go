package browse

import "sync"

// mailbox is an unbounded queue of closures drained by a single owner
// goroutine. Posting never blocks, so workers and subscriber callbacks can
// hand work back to the owner without waiting on it.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// post enqueues fn and reports whether it was accepted
func (m *mailbox) post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

// drain takes every queued closure in posting order
func (m *mailbox) drain() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	queued := m.queue
	m.queue = nil
	return queued
}

// close rejects further posts and discards anything still queued
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.queue = nil
}
