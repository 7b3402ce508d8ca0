package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level, sampling *SamplingConfig) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(LoggerConfig{
		Level:    level,
		Format:   JSON,
		Output:   &buf,
		Sampling: sampling,
	}), &buf
}

func logLines(buf *bytes.Buffer) []map[string]any {
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

func TestNewLoggerFormats(t *testing.T) {
	var text bytes.Buffer
	NewLogger(LoggerConfig{Level: slog.LevelInfo, Format: Text, Output: &text}).
		Info("observation registered", KeyPath("value"))
	assert.Contains(t, text.String(), "key_path=value")

	logger, buf := newBufferLogger(slog.LevelInfo, nil)
	logger.Info("observation registered", KeyPath("value"))
	entries := logLines(buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "value", entries[0]["key_path"])
}

func TestRegistryLoggerRespectsLevel(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo, nil)
	rl := NewRegistryLogger(logger, "views")
	ctx := context.Background()

	// Debug lines are filtered; unknown tokens (warn) and close (info) are not.
	rl.LogDeliver(ctx, 1, 1, "value", "direct", "inline", false)
	rl.LogStale(ctx, 1, 1, "value")
	rl.LogUnknownToken(ctx, 3, "value")
	rl.LogClose(ctx, 1, false)

	entries := logLines(buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "registry closed", entries[1]["msg"])
}

func TestDeliveryLinesAreSampled(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug, &SamplingConfig{
		Enabled:      true,
		Rate:         1.0,
		MaxPerSecond: 5,
	})
	rl := NewRegistryLogger(logger, "views")
	ctx := context.Background()

	for i := range 100 {
		rl.LogDeliver(ctx, i, uint64(i), "value", "async", "async", false)
	}
	delivered := len(logLines(buf))
	assert.Less(t, delivered, 100, "routed notifications are sampled")
	assert.Positive(t, delivered)

	buf.Reset()
	for i := range 10 {
		rl.LogUnknownToken(ctx, uint64(i), "value")
	}
	assert.Len(t, logLines(buf), 10, "warnings bypass sampling")
}

func TestSamplerRate(t *testing.T) {
	s := newSampler(&SamplingConfig{Enabled: true, Rate: 0.5})

	assert.True(t, s.shouldLog(slog.LevelWarn))
	assert.True(t, s.shouldLog(slog.LevelError))

	kept := 0
	for range 1000 {
		if s.shouldLog(slog.LevelDebug) {
			kept++
		}
	}
	assert.InDelta(t, 500, kept, 50)
}

func TestLoggerWithContext(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo, nil)

	ctx := ContextWithOperation(ContextWithRegistry(context.Background(), "views"), "observe")
	type foreignKey string
	ctx = context.WithValue(ctx, foreignKey("operation"), "nope")

	logger.WithContext(ctx).With(ObservingID(2)).Info("observation registered")

	entries := logLines(buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "views", entries[0]["registry"])
	assert.Equal(t, "observe", entries[0]["operation"])
	assert.EqualValues(t, 2, entries[0]["observing_id"])
	assert.NotContains(t, buf.String(), "nope")
}

func TestObservationFieldHelpers(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo, nil)

	logger.Log(context.Background(), slog.LevelInfo, "notification routed",
		RegistryName("views"),
		KeyPath("value"),
		Token(42),
		Policy("asyncDirectInitial"),
		DispatchMode("async"),
		StorageMode("weak"),
		ObjectAddr(0xc000010000),
		ActiveCount(3),
		Initial(true),
		Queue("main"),
		Panic("boom"),
		ErrorField(errors.New("deregistration skipped")),
	)

	entries := logLines(buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "views", e["registry"])
	assert.EqualValues(t, 42, e["token"])
	assert.Equal(t, "asyncDirectInitial", e["policy"])
	assert.Equal(t, "async", e["dispatch_mode"])
	assert.Equal(t, "weak", e["storage_mode"])
	assert.EqualValues(t, 3, e["active"])
	assert.Equal(t, true, e["initial"])
	assert.Equal(t, "main", e["queue"])
	assert.Equal(t, "boom", e["panic"])
	assert.Contains(t, buf.String(), "deregistration skipped")
	assert.Contains(t, e, "object_addr")
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefaultLogger(original)

	logger, buf := newBufferLogger(slog.LevelInfo, nil)
	SetDefaultLogger(logger)

	Info("queue started", Queue("main"))
	Warn("work dropped")

	assert.Len(t, logLines(buf), 2)
}

func TestNopAndSlogLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NopLogger().With(KeyPath("value")).WithContext(context.Background()).Warn("dropped")
	})

	var buf bytes.Buffer
	NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil))).Info("wrapped", KeyPath("value"))
	assert.Contains(t, buf.String(), `"key_path":"value"`)
}

func BenchmarkRegistryLogger_LogDeliver(b *testing.B) {
	var buf bytes.Buffer
	rl := NewRegistryLogger(NewLogger(LoggerConfig{
		Level:  slog.LevelDebug,
		Format: JSON,
		Output: &buf,
		Sampling: &SamplingConfig{
			Enabled: true,
			Rate:    0.1,
		},
	}), "bench")
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		rl.LogDeliver(ctx, i, uint64(i), "value", "async", "async", false)
	}
}
