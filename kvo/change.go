package kvo

import "strings"

// Options select which notifications a registration receives.
type Options uint8

const (
	// OptionOld populates Change.Old.
	OptionOld Options = 1 << iota
	// OptionInitial delivers one notification from AddObserver, before it
	// returns, carrying the current value.
	OptionInitial
	// OptionPrior delivers an additional notification before each change.
	OptionPrior
)

// Has reports whether every flag in flag is set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

func (o Options) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	if o.Has(OptionOld) {
		parts = append(parts, "old")
	}
	if o.Has(OptionInitial) {
		parts = append(parts, "initial")
	}
	if o.Has(OptionPrior) {
		parts = append(parts, "prior")
	}
	return strings.Join(parts, "|")
}

// Change describes one notification. New is the value after the change, or
// the current value for an initial notification. Old is only set when the
// registration asked for OptionOld.
type Change struct {
	New     any
	Old     any
	Initial bool
	Prior   bool
}

// Token correlates a registration with its notifications.
type Token uint64
