package kvo

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Observer receives change notifications.
type Observer interface {
	ObserveValue(keyPath string, object *Subject, change *Change, token Token)
}

// Observable is implemented by any type embedding Subject.
type Observable interface {
	AddObserver(observer Observer, keyPath string, options Options, token Token)
	RemoveObserver(observer Observer, keyPath string, token Token) bool
	subject() *Subject
}

// SubjectOf returns the Subject behind o, or nil when o is nil or a nil
// pointer.
func SubjectOf(o Observable) *Subject {
	if o == nil {
		return nil
	}
	if v := reflect.ValueOf(o); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return o.subject()
}

// Subject carries the observation machinery of an observable value. The zero
// value is ready to use. A Subject must not be copied after first use.
type Subject struct {
	info atomic.Pointer[observationInfo]

	// getters stay on the Subject: they usually close over the value that
	// embeds it, and the side table must not keep that value alive.
	mu      sync.RWMutex
	getters map[string]func() any
}

type registration struct {
	observer Observer
	keyPath  string
	options  Options
	token    Token
}

type observationInfo struct {
	mu            sync.Mutex
	registrations []registration
}

func (s *Subject) subject() *Subject { return s }

func (s *Subject) observations() *observationInfo {
	if info := s.info.Load(); info != nil {
		return info
	}
	s.info.CompareAndSwap(nil, &observationInfo{})
	return s.info.Load()
}

// AddObserver registers observer for keyPath. With OptionInitial the observer
// is notified once before AddObserver returns.
func (s *Subject) AddObserver(observer Observer, keyPath string, options Options, token Token) {
	info := s.observations()

	info.mu.Lock()
	info.registrations = append(info.registrations, registration{
		observer: observer,
		keyPath:  keyPath,
		options:  options,
		token:    token,
	})
	info.mu.Unlock()

	if !options.Has(OptionInitial) {
		return
	}
	change := &Change{Initial: true}
	change.New, _ = s.ValueForKey(keyPath)
	observer.ObserveValue(keyPath, s, change, token)
}

// RemoveObserver removes one registration matching observer, keyPath and
// token. It reports whether one was found.
func (s *Subject) RemoveObserver(observer Observer, keyPath string, token Token) bool {
	return s.observations().remove(observer, keyPath, token)
}

func (info *observationInfo) remove(observer Observer, keyPath string, token Token) bool {
	info.mu.Lock()
	defer info.mu.Unlock()

	i := slices.IndexFunc(info.registrations, func(r registration) bool {
		return r.observer == observer && r.keyPath == keyPath && r.token == token
	})
	if i < 0 {
		return false
	}
	info.registrations = slices.Delete(info.registrations, i, i+1)
	return true
}

func (info *observationInfo) count() int {
	info.mu.Lock()
	defer info.mu.Unlock()
	return len(info.registrations)
}

func (info *observationInfo) matching(keyPath string, want Options) []registration {
	info.mu.Lock()
	defer info.mu.Unlock()

	var out []registration
	for _, r := range info.registrations {
		if r.keyPath == keyPath && r.options.Has(want) {
			out = append(out, r)
		}
	}
	return out
}

// WillChangeValue notifies observers registered with OptionPrior that keyPath
// is about to change from old.
func (s *Subject) WillChangeValue(keyPath string, old any) {
	info := s.info.Load()
	if info == nil {
		return
	}
	for _, r := range info.matching(keyPath, OptionPrior) {
		change := &Change{Prior: true}
		if r.options.Has(OptionOld) {
			change.Old = old
		}
		r.observer.ObserveValue(keyPath, s, change, r.token)
	}
}

// DidChangeValue notifies every observer of keyPath that it changed from old
// to value. Observers run on the calling goroutine, in registration order.
func (s *Subject) DidChangeValue(keyPath string, old, value any) {
	info := s.info.Load()
	if info == nil {
		return
	}
	for _, r := range info.matching(keyPath, 0) {
		change := &Change{New: value}
		if r.options.Has(OptionOld) {
			change.Old = old
		}
		r.observer.ObserveValue(keyPath, s, change, r.token)
	}
}

// Expose makes getter the source of keyPath's current value for initial
// notifications and ValueForKey.
func (s *Subject) Expose(keyPath string, getter func() any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getters == nil {
		s.getters = make(map[string]func() any)
	}
	s.getters[keyPath] = getter
}

// ValueForKey returns the current value of an exposed key path.
func (s *Subject) ValueForKey(keyPath string) (any, bool) {
	s.mu.RLock()
	getter := s.getters[keyPath]
	s.mu.RUnlock()
	if getter == nil {
		return nil, false
	}
	return getter(), true
}

// ObserverCount returns the number of active registrations.
func (s *Subject) ObserverCount() int {
	info := s.info.Load()
	if info == nil {
		return 0
	}
	return info.count()
}

// Handle returns a non-owning handle on s.
func (s *Subject) Handle() Handle {
	return Handle{
		addr: uintptr(unsafe.Pointer(s)),
		info: s.observations(),
	}
}
