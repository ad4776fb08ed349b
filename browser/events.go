package browser

import "sync"

// EventType names a node state change reported to listeners.
type EventType string

const (
	// EventLoaded fires after a node's first page (or a file preview)
	// successfully loads.
	EventLoaded EventType = "loaded"
	// EventAppended fires after a follow-up page is appended.
	EventAppended EventType = "appended"
	// EventError fires when a node records an inline error, soft or hard.
	EventError EventType = "error"
	// EventFiltered fires when a node's filter changes.
	EventFiltered EventType = "filtered"
)

// Listener receives node state change events.
type Listener func(ev EventType, node *EntryNode)

// Notifier fans node state changes out to registered listeners. The tree
// never depends on listeners for its own correctness; they exist so
// collaborators can observe mutations.
type Notifier struct {
	mu        sync.Mutex
	listeners []Listener
}

// Subscribe registers a listener. Listeners are invoked synchronously after
// each mutation, without the mutated node's lock held.
func (f *Notifier) Subscribe(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *Notifier) notify(ev EventType, n *EntryNode) {
	f.mu.Lock()
	listeners := make([]Listener, len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l(ev, n)
	}
}
