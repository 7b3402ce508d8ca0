package observability

import (
	"context"
	"log/slog"
)

// RegistryLogger emits the lifecycle lines of one observation registry.
type RegistryLogger struct {
	Logger
	name string
}

// NewRegistryLogger creates a logger bound to the named registry
func NewRegistryLogger(logger Logger, name string) *RegistryLogger {
	if logger == nil {
		logger = Default()
	}
	return &RegistryLogger{
		Logger: logger.With(RegistryName(name)),
		name:   name,
	}
}

// Name returns the registry name carried on every line.
func (rl *RegistryLogger) Name() string {
	return rl.name
}

// LogObserve logs a successful registration
func (rl *RegistryLogger) LogObserve(ctx context.Context, id int, keyPath string, token uint64, policy, storage string, active int) {
	rl.WithContext(ctx).Debug("observation registered",
		ObservingID(id),
		KeyPath(keyPath),
		Token(token),
		Policy(policy),
		StorageMode(storage),
		ActiveCount(active),
		Operation("observe"),
	)
}

// LogDuplicate logs a registration skipped because an equal one is active
func (rl *RegistryLogger) LogDuplicate(ctx context.Context, keyPath, policy string) {
	rl.WithContext(ctx).Debug("observation already registered",
		KeyPath(keyPath),
		Policy(policy),
		Operation("observe-if-needed"),
	)
}

// LogStop logs the removal of one observation. deregistered is false when the
// observed object was gone and no deregistration call could be issued.
func (rl *RegistryLogger) LogStop(ctx context.Context, id int, keyPath string, deregistered bool, active int) {
	logger := rl.WithContext(ctx).With(
		ObservingID(id),
		KeyPath(keyPath),
		ActiveCount(active),
		Operation("stop-observing"),
	)

	if deregistered {
		logger.Debug("observation stopped")
	} else {
		logger.Debug("observation removed, observed object gone",
			slog.Bool("deregistered", false),
		)
	}
}

// LogStopEverything logs a bulk teardown
func (rl *RegistryLogger) LogStopEverything(ctx context.Context, removed, skipped int) {
	if removed == 0 {
		return
	}
	rl.WithContext(ctx).Debug("all observations stopped",
		slog.Int("removed", removed),
		slog.Int("skipped", skipped),
		Operation("stop-observing-everything"),
	)
}

// LogDeliver logs a routed notification. These lines are the high-volume ones
// and are subject to sampling. An initial notification is routed while its
// observation is still being registered, so id is 0 and only token identifies
// it.
func (rl *RegistryLogger) LogDeliver(ctx context.Context, id int, token uint64, keyPath, policy, mode string, initial bool) {
	rl.WithContext(ctx).Debug("notification routed",
		ObservingID(id),
		Token(token),
		KeyPath(keyPath),
		Policy(policy),
		DispatchMode(mode),
		Initial(initial),
		Operation("deliver"),
	)
}

// LogUnknownToken logs a notification that matched no active observation
func (rl *RegistryLogger) LogUnknownToken(ctx context.Context, token uint64, keyPath string) {
	rl.WithContext(ctx).Warn("notification for unknown token dropped",
		Token(token),
		KeyPath(keyPath),
		Operation("deliver"),
	)
}

// LogStale logs a scheduled callback dropped because the registry closed
// after it was submitted. As with LogDeliver, id may be 0 for an initial
// notification.
func (rl *RegistryLogger) LogStale(ctx context.Context, id int, token uint64, keyPath string) {
	rl.WithContext(ctx).Debug("stale notification dropped",
		ObservingID(id),
		Token(token),
		KeyPath(keyPath),
		Operation("deliver"),
	)
}

// LogClose logs registry shutdown
func (rl *RegistryLogger) LogClose(ctx context.Context, removed int, finalized bool) {
	rl.WithContext(ctx).Info("registry closed",
		slog.Int("removed", removed),
		slog.Bool("finalized", finalized),
		Operation("close"),
	)
}
