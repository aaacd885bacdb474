package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestContextRoundTrip checks that a logger stored in a context is the one used.
func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, zapcore.DebugLevel)

	ctx := ToContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	ctx = WithName(ctx, "toggler")
	ctx = WithKV(ctx, "pin", 4)
	InfoKV(ctx, "driven", "state", "ON")
	Debugf(ctx, "period %d", 500)

	out := buf.String()
	require.Contains(t, out, "toggler")
	require.Contains(t, out, "driven")
	require.Contains(t, out, `"pin": 4`)
	require.Contains(t, out, "period 500")
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestLevelFiltering checks that messages below the configured level are dropped.
func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ToContext(context.Background(), New(&buf, zapcore.WarnLevel))

	Infof(ctx, "quiet")
	Warnf(ctx, "loud")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
}

// TestKVHelpers checks that key-value pairs reach the output at each level.
func TestKVHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ToContext(context.Background(), New(&buf, zapcore.DebugLevel))

	DebugKV(ctx, "transition", "count", 3)
	ErrorKV(ctx, "control loop stopped", "code", 20)

	out := buf.String()
	require.Contains(t, out, "transition")
	require.Regexp(t, `"count":\s?3`, out)
	require.Contains(t, out, "control loop stopped")
	require.Regexp(t, `"code":\s?20`, out)
}

// TestSetLevel checks that the global level follows SetLevel.
func TestSetLevel(t *testing.T) {
	prev := Level()
	t.Cleanup(func() { SetLevel(prev) })

	SetLevel(zapcore.ErrorLevel)
	require.Equal(t, zapcore.ErrorLevel, Level())
}
