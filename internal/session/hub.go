// Package session keeps the signed-in user's display view (name and avatar)
// in sync with profile edits.
package session

import "sync"

// EventKind tells subscribers what changed.
type EventKind string

const (
	ProfileUpdated EventKind = "profile_updated"
	AvatarChanged  EventKind = "avatar_changed"
)

// Event is published after a profile change has been persisted.
type Event struct {
	Kind        EventKind
	IdentityKey string
}

// Hub is a typed observer registry. Publish calls every subscriber
// synchronously in subscription order.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
