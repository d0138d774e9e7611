package engine

import "sync"

// mailbox is an unbounded FIFO of commands. push never blocks; ready
// carries at most one pending wake-up.
type mailbox struct {
	mu    sync.Mutex
	queue []Command
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (m *mailbox) push(cmd Command) {
	m.mu.Lock()
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}
