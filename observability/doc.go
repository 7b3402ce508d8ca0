// Package observability provides structured logging and Prometheus metrics
// for go-kvobserver registries.
//
// # Structured Logging
//
// Logging is built on the standard slog package:
//
//	logger := observability.NewLogger(observability.LoggerConfig{
//		Level:  slog.LevelDebug,
//		Format: observability.JSON,
//		Output: os.Stdout,
//	})
//
//	logger.Debug("notification routed",
//		observability.ObservingID(1),
//		observability.KeyPath("value"),
//		observability.DispatchMode("async"),
//	)
//
// # Context-Aware Logging
//
// WithContext copies the registry name and operation stored with
// ContextWithRegistry and ContextWithOperation onto the returned logger.
//
// # High-Volume Sampling
//
// Every change notification produces a debug line. Sampling bounds that
// volume; warnings and errors are never sampled:
//
//	logger := observability.NewLogger(observability.LoggerConfig{
//		Level:  slog.LevelDebug,
//		Format: observability.JSON,
//		Sampling: &observability.SamplingConfig{
//			Enabled:      true,
//			Rate:         0.1,
//			MaxPerSecond: 100,
//		},
//	})
//
// # Metrics
//
// NewMetrics registers the registry collectors with a prometheus.Registerer.
// Several registries may share one Metrics value. A nil *Metrics records
// nothing.
package observability
