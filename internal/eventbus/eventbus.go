package eventbus

import "sync"

// Callback receives a published event.
type Callback func(Event)

// Bus is a synchronous, in-process publish/subscribe hub keyed on [Op].
//
// Subscribe is additive: every call appends a new subscriber for the given
// op, rather than replacing whatever subscriber set was registered before
// it. The reference implementation's subscribe reassigned a fresh empty set
// on every call, so a second subscriber for the same op silently discarded
// the first — Bus fixes that.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Op][]Callback
}

// New returns an empty event bus.
func New() *Bus {
	return &Bus{subscribers: make(map[Op][]Callback)}
}

// Subscribe registers callback to run whenever an event with the given op
// is published. Multiple subscriptions for the same op accumulate; none of
// them replace an earlier one.
func (b *Bus) Subscribe(op Op, callback Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[op] = append(b.subscribers[op], callback)
}

// Publish invokes every subscriber registered for event's op, synchronously
// and in registration order. Publishing an op with no subscribers is a
// no-op.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	callbacks := append([]Callback(nil), b.subscribers[event.Op()]...)
	b.mu.RUnlock()

	for _, callback := range callbacks {
		callback(event)
	}
}
