package orchestrator

import "sync"

// Pool holds a fixed number of orchestrators so concurrent requests get
// independent conversion contexts while total engine load stays bounded.
// Contexts share no mutable state with each other.
type Pool struct {
	mu     sync.Mutex
	closed bool
	slots  chan *Orchestrator
}

// NewPool creates size orchestrators from the factory.
func NewPool(size int, factory func() *Orchestrator) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{slots: make(chan *Orchestrator, size)}
	for i := 0; i < size; i++ {
		p.slots <- factory()
	}
	return p
}

// Acquire blocks until an orchestrator is free. Returns nil once the
// pool is closed and drained.
func (p *Pool) Acquire() *Orchestrator {
	return <-p.slots
}

// Release returns an orchestrator to the pool. Releasing into a closed
// pool tears the orchestrator down instead; shutdown may time out while
// a conversion is still in flight, and its handler releases afterwards.
func (p *Pool) Release(o *Orchestrator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		o.Close()
		return
	}
	p.slots <- o
}

// Close tears down every pooled orchestrator. Orchestrators still
// checked out are torn down by their eventual Release.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.slots)
	p.mu.Unlock()

	for o := range p.slots {
		o.Close()
	}
}
