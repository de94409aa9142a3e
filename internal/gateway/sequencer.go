package gateway

import (
	"context"
	"sync"
)

// Sequencer makes the newest search per key win. Begin cancels whatever
// request was still in flight for the same key, and a response is only
// applied if its Ticket is still current when it arrives.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	current map[string]*Ticket
}

// Ticket identifies one in-flight request.
type Ticket struct {
	s      *Sequencer
	key    string
	id     uint64
	cancel context.CancelFunc
}

func NewSequencer() *Sequencer {
	return &Sequencer{
		current: make(map[string]*Ticket),
	}
}

// Begin registers a new request for key and returns a context that is
// cancelled as soon as a newer request for the same key begins.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.current[key]; ok {
		prev.cancel()
	}
	s.next++
	t := &Ticket{s: s, key: key, id: s.next, cancel: cancel}
	s.current[key] = t
	return ctx, t
}

// Current reports whether no newer request for the same key has begun.
func (t *Ticket) Current() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	cur, ok := t.s.current[t.key]
	return ok && cur.id == t.id
}

// Done releases the ticket. Safe to call more than once.
func (t *Ticket) Done() {
	t.cancel()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if cur, ok := t.s.current[t.key]; ok && cur.id == t.id {
		delete(t.s.current, t.key)
	}
}
