package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/expensetracker/internal/models"
)

// cell holds the current State and fans every change out to subscribers.
// Store never blocks: each subscriber has its own unbounded queue drained
// by a forwarding goroutine, so a slow reader delays only itself.
type cell struct {
	mu      sync.Mutex
	current models.State
	subs    map[*Subscription]struct{}
	closed  bool
}

func newCell(initial models.State) *cell {
	return &cell{current: initial.Clone(), subs: make(map[*Subscription]struct{})}
}

func (c *cell) Load() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

func (c *cell) Store(s models.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = s.Clone()
	for sub := range c.subs {
		sub.enqueue(s.Clone())
	}
}

// Subscribe registers a subscriber whose channel yields the current State
// first and then every later Store, in order. The subscription ends when
// ctx is done, Close is called, or the cell is closed.
func (c *cell) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		c:      make(chan models.State),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		owner:  c,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.closeOnce.Do(func() { close(sub.done) })
		close(sub.c)
		return sub
	}
	sub.enqueue(c.current.Clone())
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	go sub.forward(ctx)
	return sub
}

func (c *cell) remove(sub *Subscription) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}

// Close ends every subscription and refuses new ones.
func (c *cell) Close() {
	c.mu.Lock()
	c.closed = true
	subs := make([]*Subscription, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Subscription is one observer of the session State.
type Subscription struct {
	c      chan models.State
	notify chan struct{}
	done   chan struct{}
	owner  *cell

	mu    sync.Mutex
	queue []models.State

	closeOnce sync.Once
}

// C yields states in publication order. It is closed when the
// subscription ends.
func (s *Subscription) C() <-chan models.State {
	return s.c
}

// Close stops delivery. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.owner.remove(s)
		close(s.done)
	})
}

func (s *Subscription) enqueue(st models.State) {
	s.mu.Lock()
	s.queue = append(s.queue, st)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) forward(ctx context.Context) {
	defer close(s.c)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			case <-ctx.Done():
				s.Close()
				return
			}
		}
		next := s.queue[0]
		s.queue[0] = models.State{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.c <- next:
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close()
			return
		}
	}
}
