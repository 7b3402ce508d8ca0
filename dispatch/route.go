package dispatch

import "fmt"

// Mode is how a notification was run.
type Mode uint8

const (
	ModeInline Mode = iota
	ModeSync
	ModeAsync
)

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Env supplies the targets a Policy does not carry itself.
type Env struct {
	// Main is used by the main-queue kinds. Nil means Main().
	Main MainQueue
	// Inferred is used by the ManagedInferred kinds.
	Inferred Transactional
}

func (e Env) main() MainQueue {
	if e.Main != nil {
		return e.Main
	}
	return Main()
}

func (e Env) inferred() Transactional {
	if e.Inferred == nil {
		panic(ErrNoInferred)
	}
	return e.Inferred
}

// Route runs fn according to p. initial reports that this is the first
// notification of a registration that requested an initial value.
func (p Policy) Route(env Env, initial bool, fn func()) Mode {
	switch p.kind {
	case KindDirect:
		fn()
		return ModeInline

	case KindUnsafeSync:
		p.queue.Sync(fn)
		return ModeSync

	case KindAsync:
		p.queue.Async(fn)
		return ModeAsync

	case KindAsyncOnMain:
		env.main().Async(fn)
		return ModeAsync

	case KindAsyncDirectInitial:
		if initial {
			fn()
			return ModeInline
		}
		p.queue.Async(fn)
		return ModeAsync

	case KindAsyncOnMainDirectInitial:
		if initial {
			fn()
			return ModeInline
		}
		env.main().Async(fn)
		return ModeAsync

	case KindDirectOrAsyncOnMain:
		mq := env.main()
		if mq.IsCurrent() {
			fn()
			return ModeInline
		}
		mq.Async(fn)
		return ModeAsync

	case KindManagedSync:
		return perform(p.context, true, fn)
	case KindManagedAsync:
		return perform(p.context, false, fn)
	case KindManagedSyncDirectInitial:
		return performUnlessInitial(p.context, true, initial, fn)
	case KindManagedAsyncDirectInitial:
		return performUnlessInitial(p.context, false, initial, fn)

	case KindManagedInferredSync:
		return perform(env.inferred(), true, fn)
	case KindManagedInferredAsync:
		return perform(env.inferred(), false, fn)
	case KindManagedInferredSyncDirectInitial:
		return performUnlessInitial(env.inferred(), true, initial, fn)
	case KindManagedInferredAsyncDirectInitial:
		return performUnlessInitial(env.inferred(), false, initial, fn)

	default:
		panic(fmt.Errorf("%w: %s", ErrUnknownKind, p.kind))
	}
}

func perform(c Transactional, wait bool, fn func()) Mode {
	if wait {
		c.PerformAndWait(fn)
		return ModeSync
	}
	c.Perform(fn)
	return ModeAsync
}

func performUnlessInitial(c Transactional, wait, initial bool, fn func()) Mode {
	if initial {
		fn()
		return ModeInline
	}
	return perform(c, wait, fn)
}
