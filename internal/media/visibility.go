package media

import (
	"sort"
	"sync"
)

// Visibility is the page-visibility state reported by the client.
type Visibility string

// Visibility states
const (
	Visible Visibility = "visible"
	Hidden  Visibility = "hidden"
)

// VisibilitySource delivers visibility changes to subscribers.
// The returned cancel func detaches the handler; calling it more than once is safe.
type VisibilitySource interface {
	Subscribe(fn func(Visibility)) (cancel func())
}

// VisibilityBus is an in-process VisibilitySource.
type VisibilityBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Visibility)
}

// NewVisibilityBus creates an empty bus.
func NewVisibilityBus() *VisibilityBus {
	return &VisibilityBus{subs: make(map[int]func(Visibility))}
}

// Subscribe implements VisibilitySource.
func (b *VisibilityBus) Subscribe(fn func(Visibility)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers state to every current subscriber in subscription order.
// Handlers run on the caller's goroutine, outside the bus lock.
func (b *VisibilityBus) Publish(state Visibility) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Visibility), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(state)
	}
}

// Subscribers returns the number of attached handlers.
func (b *VisibilityBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
