// internal/notify/hub.go
package notify

import "sync"

// Snapshot is the latest known state of some document, never a delta.
// Consumers must tolerate duplicates and stale-then-current ordering.
type Snapshot any

// Hub fans snapshots out to subscribers by topic. Publish never blocks: a
// subscriber whose buffer is full misses that intermediate state and catches
// up on the next publish, which is legal because every delivery is the full
// latest state.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan Snapshot
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Snapshot)}
}

// Subscribe registers interest in a topic. The returned cancel func is
// idempotent and releases the subscription.
func (h *Hub) Subscribe(topic string) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 8)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan Snapshot)
	}
	h.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if m, ok := h.subs[topic]; ok {
				if c, ok := m[id]; ok {
					delete(m, id)
					close(c)
				}
				if len(m) == 0 {
					delete(h.subs, topic)
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers the snapshot to every current subscriber of the topic.
func (h *Hub) Publish(topic string, s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs[topic] {
		select {
		case ch <- s:
		default: // subscriber is behind; it will see the next snapshot
		}
	}
}

// Close shuts the hub down. Idempotent; all subscriber channels are closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for topic, m := range h.subs {
		for _, ch := range m {
			close(ch)
		}
		delete(h.subs, topic)
	}
}
