package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// LogFormat represents the output format for logs
type LogFormat int

const (
	// JSON format outputs structured JSON logs
	JSON LogFormat = iota
	// Text format outputs human-readable text logs
	Text
)

// Logger interface defines the logging contract for go-kvobserver
type Logger interface {
	Debug(msg string, fields ...slog.Attr)
	Info(msg string, fields ...slog.Attr)
	Warn(msg string, fields ...slog.Attr)
	Error(msg string, fields ...slog.Attr)
	With(fields ...slog.Attr) Logger
	WithContext(ctx context.Context) Logger
	Log(ctx context.Context, level slog.Level, msg string, fields ...slog.Attr)
}

// LoggerConfig holds configuration for creating a logger
type LoggerConfig struct {
	Level    slog.Level
	Format   LogFormat
	Output   io.Writer
	Sampling *SamplingConfig
}

// SamplingConfig controls log sampling. Delivery lines are emitted once per
// change notification and can dominate output on busy objects.
type SamplingConfig struct {
	Enabled      bool
	Rate         float64 // 0.0-1.0, fraction of logs to keep
	MaxPerSecond int     // Maximum logs per second
}

var defaultLogger atomic.Value // Logger

func init() {
	defaultLogger.Store(loggerBox{NewLogger(LoggerConfig{
		Level:  slog.LevelInfo,
		Format: Text,
		Output: os.Stderr,
	})})
}

// loggerBox keeps the stored dynamic type constant for atomic.Value.
type loggerBox struct{ Logger }

// SetDefaultLogger sets the package-level default logger
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerBox{logger})
}

// Default returns the package-level default logger
func Default() Logger {
	return defaultLogger.Load().(loggerBox).Logger
}

// Convenience functions using the default logger
func Debug(msg string, fields ...slog.Attr) {
	Default().Debug(msg, fields...)
}

func Info(msg string, fields ...slog.Attr) {
	Default().Info(msg, fields...)
}

func Warn(msg string, fields ...slog.Attr) {
	Default().Warn(msg, fields...)
}

func Error(msg string, fields ...slog.Attr) {
	Default().Error(msg, fields...)
}

// logger implements the Logger interface
type logger struct {
	slogger  *slog.Logger
	sampling *sampler
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config LoggerConfig) Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: config.Level,
	}

	var handler slog.Handler
	switch config.Format {
	case JSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	var s *sampler
	if config.Sampling != nil && config.Sampling.Enabled {
		s = newSampler(config.Sampling)
	}

	return &logger{
		slogger:  slog.New(handler),
		sampling: s,
	}
}

// NewSlogLogger wraps an existing *slog.Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &logger{slogger: l}
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return &logger{slogger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// Debug logs a debug message with optional structured fields
func (l *logger) Debug(msg string, fields ...slog.Attr) {
	l.Log(context.Background(), slog.LevelDebug, msg, fields...)
}

// Info logs an info message with optional structured fields
func (l *logger) Info(msg string, fields ...slog.Attr) {
	l.Log(context.Background(), slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message with optional structured fields
func (l *logger) Warn(msg string, fields ...slog.Attr) {
	l.Log(context.Background(), slog.LevelWarn, msg, fields...)
}

// Error logs an error message with optional structured fields
func (l *logger) Error(msg string, fields ...slog.Attr) {
	l.Log(context.Background(), slog.LevelError, msg, fields...)
}

// With creates a new logger with additional structured fields
func (l *logger) With(fields ...slog.Attr) Logger {
	if len(fields) == 0 {
		return l
	}
	return &logger{
		slogger:  l.slogger.With(attrsToArgs(fields)...),
		sampling: l.sampling,
	}
}

type contextKey int

const (
	operationKey contextKey = iota
	registryKey
)

// ContextWithOperation returns a context whose loggers carry operation=op.
func ContextWithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// ContextWithRegistry returns a context whose loggers carry registry=name.
func ContextWithRegistry(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, registryKey, name)
}

// WithContext creates a new logger with context-aware fields
func (l *logger) WithContext(ctx context.Context) Logger {
	var fields []slog.Attr

	if name, ok := ctx.Value(registryKey).(string); ok {
		fields = append(fields, RegistryName(name))
	}
	if op, ok := ctx.Value(operationKey).(string); ok {
		fields = append(fields, Operation(op))
	}

	return l.With(fields...)
}

// Log logs a message at the specified level with optional structured fields
func (l *logger) Log(ctx context.Context, level slog.Level, msg string, fields ...slog.Attr) {
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	if l.sampling != nil && !l.sampling.shouldLog(level) {
		return
	}
	l.slogger.LogAttrs(ctx, level, msg, fields...)
}

func attrsToArgs(fields []slog.Attr) []any {
	args := make([]any, len(fields))
	for i, attr := range fields {
		args[i] = attr
	}
	return args
}

// sampler implements log sampling to control high-volume logging
type sampler struct {
	config   *SamplingConfig
	counter  atomic.Uint64
	lastSec  atomic.Int64
	secCount atomic.Uint64
}

// newSampler creates a new log sampler
func newSampler(config *SamplingConfig) *sampler {
	return &sampler{
		config: config,
	}
}

// shouldLog determines if a log entry should be written based on sampling rules
func (s *sampler) shouldLog(level slog.Level) bool {
	// Warnings and errors bypass sampling.
	if level >= slog.LevelWarn {
		return true
	}

	if s.config.MaxPerSecond > 0 {
		now := time.Now().Unix()
		lastSec := s.lastSec.Load()

		if now != lastSec {
			if s.lastSec.CompareAndSwap(lastSec, now) {
				s.secCount.Store(1)
			}
		} else if count := s.secCount.Add(1); int(count) > s.config.MaxPerSecond {
			return false
		}
	}

	if s.config.Rate < 1.0 {
		count := s.counter.Add(1)
		if float64(count%100)/100.0 >= s.config.Rate {
			return false
		}
	}

	return true
}

// Observation-specific field helpers for consistent logging

// RegistryName creates a registry name field
func RegistryName(name string) slog.Attr {
	return slog.String("registry", name)
}

// ObservingID creates an observing identifier field
func ObservingID(id int) slog.Attr {
	return slog.Int("observing_id", id)
}

// KeyPath creates a key path field
func KeyPath(keyPath string) slog.Attr {
	return slog.String("key_path", keyPath)
}

// Token creates a correlation token field
func Token(token uint64) slog.Attr {
	return slog.Uint64("token", token)
}

// Policy creates a dispatch policy field
func Policy(policy string) slog.Attr {
	return slog.String("policy", policy)
}

// DispatchMode creates a field naming how a notification was dispatched
func DispatchMode(mode string) slog.Attr {
	return slog.String("dispatch_mode", mode)
}

// StorageMode creates a field naming how the observed object is referenced
func StorageMode(mode string) slog.Attr {
	return slog.String("storage_mode", mode)
}

// ObjectAddr creates an observed object address field
func ObjectAddr(addr uintptr) slog.Attr {
	return slog.Uint64("object_addr", uint64(addr))
}

// ActiveCount creates an active observation count field
func ActiveCount(n int) slog.Attr {
	return slog.Int("active", n)
}

// Initial creates a field flagging the initial notification
func Initial(initial bool) slog.Attr {
	return slog.Bool("initial", initial)
}

// Queue creates a queue label field
func Queue(label string) slog.Attr {
	return slog.String("queue", label)
}

// Operation creates an operation field
func Operation(op string) slog.Attr {
	return slog.String("operation", op)
}

// ErrorField creates an error field
func ErrorField(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Panic creates a field holding a recovered panic value
func Panic(v any) slog.Attr {
	return slog.Any("panic", v)
}
