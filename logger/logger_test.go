package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"strings"
	"testing"

	"github.com/amp-labs/duesort/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))

	return out
}

func TestLogger(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{
		Subsystem: "duesort",
		JSON:      true,
		MinLevel:  slog.LevelDebug,
		Output:    &buf,
	})

	Get().Info("default subsystem")
	assert.Equal(t, "duesort", lastLine(t, &buf)["subsystem"])

	ctx := WithSubsystem(t.Context(), "batch")
	Get(ctx).Info("overridden subsystem")
	assert.Equal(t, "batch", lastLine(t, &buf)["subsystem"])

	ctx = WithRunId(t.Context(), "run-1")
	Get(ctx).Info("with run id")
	assert.Equal(t, "run-1", lastLine(t, &buf)["run-id"])

	ctx = With(With(t.Context(), "file", "a.json"), "records", 3)
	Get(ctx).Info("with values")

	line := lastLine(t, &buf)
	assert.Equal(t, "a.json", line["file"])
	assert.InDelta(t, 3, line["records"], 0)

	before := buf.Len()
	Get(WithMuted(t.Context(), true)).Error("muted")
	assert.Equal(t, before, buf.Len())

	//nolint:staticcheck // nil context is tolerated on purpose
	Get(nil, t.Context()).Info("nil context skipped")
	assert.Equal(t, "duesort", lastLine(t, &buf)["subsystem"])
}

func TestLegacy(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{
		Subsystem:   "test",
		JSON:        true,
		MinLevel:    slog.LevelDebug,
		LegacyLevel: slog.LevelWarn,
		Output:      &buf,
	})

	log.Println("legacy line")

	line := lastLine(t, &buf)
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "legacy line", line["msg"])
}

func TestConfigureLogging(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ctx := envutil.WithEnvOverrides(context.Background(), map[string]string{
		"LOG_JSON":  "true",
		"LOG_LEVEL": "warn",
	})

	ConfigureLogging(ctx, "duesort", WithOutput(&buf))

	Get().Info("filtered")
	assert.Empty(t, buf.String())

	Get().Warn("kept")
	assert.Equal(t, "kept", lastLine(t, &buf)["msg"])
}

func TestFanoutHandler(t *testing.T) {
	t.Parallel()

	var info, debug bytes.Buffer

	h := newFanoutHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	l := slog.New(h).With("k", "v").WithGroup("g")
	l.Debug("only debug")
	l.Info("both")

	assert.NotContains(t, info.String(), "only debug")
	assert.Contains(t, info.String(), "both")
	assert.Contains(t, debug.String(), "only debug")
	assert.Contains(t, debug.String(), `"k":"v"`)
}
