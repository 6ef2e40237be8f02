package devserver

import "sync"

// Broker holds at most one change listener. A new subscription replaces the
// previous one.
type Broker struct {
	mu      sync.Mutex
	current *listener
}

type listener struct {
	notify func()
}

// Subscribe makes fn the current listener. The returned func clears it, but
// only while fn is still current.
func (b *Broker) Subscribe(fn func()) (unsubscribe func()) {
	l := &listener{notify: fn}
	b.mu.Lock()
	b.current = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.current == l {
			b.current = nil
		}
	}
}

// Notify calls the current listener, if any, and reports whether one was
// called.
func (b *Broker) Notify() bool {
	b.mu.Lock()
	l := b.current
	b.mu.Unlock()
	if l == nil || l.notify == nil {
		return false
	}
	l.notify()
	return true
}

// HasListener reports whether a listener is subscribed.
func (b *Broker) HasListener() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current != nil
}
