package auth

import "sync"

// Hub fans session changes out to subscribers. Changes are delivered
// synchronously, one publish at a time, in the order Publish was called;
// within a publish, subscribers run in subscription order. Subscribers must
// not publish from inside their callback.
type Hub struct {
	deliver sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Change)
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn. The returned function removes it and is safe to
// call more than once.
func (h *Hub) Subscribe(fn func(Change)) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers c to every current subscriber.
func (h *Hub) Publish(c Change) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	subs := make([]subscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(c)
	}
}

// Len reports the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
