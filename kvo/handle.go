package kvo

// Handle identifies a Subject by address without keeping it alive. It can
// still remove registrations after the Subject is gone, because it holds the
// observer side table rather than the Subject.
//
// The address is only meaningful for identity comparison while the Subject
// is known to be alive; the runtime may reuse it afterwards.
type Handle struct {
	addr uintptr
	info *observationInfo
}

// Addr returns the address of the Subject the handle was taken from.
func (h Handle) Addr() uintptr { return h.addr }

// IsZero reports whether h was never assigned.
func (h Handle) IsZero() bool { return h.info == nil }

// RemoveObserver removes a registration from the Subject's side table.
func (h Handle) RemoveObserver(observer Observer, keyPath string, token Token) bool {
	if h.info == nil {
		return false
	}
	return h.info.remove(observer, keyPath, token)
}

// ObserverCount returns the number of registrations left in the side table.
func (h Handle) ObserverCount() int {
	if h.info == nil {
		return 0
	}
	return h.info.count()
}
