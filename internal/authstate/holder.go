package authstate

import "sync"

// Holder is an observable cell for the current auth State. There is one
// holder per auth service: it is written only from within auth operations and
// read by any number of subscribers, so reads are guarded but writes never
// contend with each other.
type Holder struct {
	mu   sync.RWMutex
	cur  State
	subs map[chan State]struct{}
}

// NewHolder creates a Holder starting in the Loading state.
func NewHolder() *Holder {
	return &Holder{
		cur:  Loading(),
		subs: make(map[chan State]struct{}),
	}
}

// Current returns the state the holder currently carries.
func (h *Holder) Current() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Set stores the new state and broadcasts it to all subscribers. Slow
// subscribers that have not drained their channel miss intermediate states
// rather than blocking the writer.
func (h *Holder) Set(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = s
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribe registers a new observer. The channel immediately receives the
// current state, matching replay-on-collect semantics the clients expect.
func (h *Holder) Subscribe() chan State {
	ch := make(chan State, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = struct{}{}
	ch <- h.cur
	return ch
}

// Unsubscribe removes an observer and closes its channel.
func (h *Holder) Unsubscribe(ch chan State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}
