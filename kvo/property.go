package kvo

import "sync"

// Property is an observable value bound to a Subject under a key path.
type Property[T any] struct {
	mu      sync.RWMutex
	subject *Subject
	keyPath string
	value   T
}

// Bind attaches p to s under keyPath and sets its initial value without
// notifying. Bind must be called before the property is shared.
func (p *Property[T]) Bind(s *Subject, keyPath string, initial T) {
	p.subject = s
	p.keyPath = keyPath
	p.value = initial
	s.Expose(keyPath, func() any { return p.Get() })
}

// KeyPath returns the key path p was bound under.
func (p *Property[T]) KeyPath() string { return p.keyPath }

// Get returns the current value.
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set stores v and notifies observers on the calling goroutine. Unbound
// properties just store the value.
func (p *Property[T]) Set(v T) {
	old := p.Get()
	if p.subject != nil {
		p.subject.WillChangeValue(p.keyPath, old)
	}

	p.mu.Lock()
	old = p.value
	p.value = v
	p.mu.Unlock()

	if p.subject != nil {
		p.subject.DidChangeValue(p.keyPath, old, v)
	}
}

// Update applies fn to the current value and stores the result.
func (p *Property[T]) Update(fn func(T) T) {
	p.Set(fn(p.Get()))
}
