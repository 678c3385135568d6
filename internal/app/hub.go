package app

import (
	"sync"

	"interview-coach-service/internal/domain"
)

// SessionUpdate is pushed to subscribers after every accepted operation.
type SessionUpdate struct {
	Op      string          `json:"op"`
	Session *domain.Session `json:"session"`
}

// hub fans session updates out to subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan SessionUpdate]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan SessionUpdate]struct{})}
}

func (h *hub) subscribe(sessionID string) (<-chan SessionUpdate, func()) {
	ch := make(chan SessionUpdate, 8)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan SessionUpdate]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set := h.subs[sessionID]
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, sessionID)
		}
	}
	return ch, cancel
}

// publish never blocks: a full subscriber loses its oldest pending update.
func (h *hub) publish(update SessionUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[update.Session.ID] {
		u := SessionUpdate{Op: update.Op, Session: update.Session.Clone()}
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}
