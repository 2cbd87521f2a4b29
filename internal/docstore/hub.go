package docstore

import (
	"context"
	"sync"
)

// hub routes change notifications from writers to live subscriptions of the
// same process. Topics are canonical collection keys (prefixed "c:") and
// document keys (prefixed "d:").
type hub struct {
	mu   sync.Mutex
	next uint64
	subs map[string]map[uint64]chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[uint64]chan struct{})}
}

func collectionTopic(key string) string { return "c:" + key }
func documentTopic(key string) string   { return "d:" + key }

func (h *hub) add(topic string, wake chan struct{}) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	m := h.subs[topic]
	if m == nil {
		m = make(map[uint64]chan struct{})
		h.subs[topic] = m
	}
	m[h.next] = wake
	return h.next
}

func (h *hub) remove(topic string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.subs[topic]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(h.subs, topic)
		}
	}
}

// notify wakes every subscriber of the given topics. A subscriber that has
// not consumed its previous wake-up is left alone: it will re-read the
// latest state anyway.
func (h *hub) notify(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		for _, wake := range h.subs[t] {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// active returns the number of registered subscriptions.
func (h *hub) active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}

// watch registers topic and runs refresh once immediately and again after
// every wake-up, on a dedicated goroutine, until the returned Unsubscribe is
// called or ctx ends. Refreshes of one subscription never overlap, so
// snapshots are delivered in the order they were read.
func (h *hub) watch(ctx context.Context, topic string, refresh func(context.Context)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	wake := make(chan struct{}, 1)
	id := h.add(topic, wake)

	go func() {
		defer h.remove(topic, id)
		refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
				if ctx.Err() != nil {
					return
				}
				refresh(ctx)
			}
		}
	}()

	return Unsubscribe(cancel)
}
