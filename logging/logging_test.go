package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		assert.NilError(t, err)
		assert.Equal(t, got, want)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestSetupConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := Setup(&buf, slog.LevelInfo, "")
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", "table", "users")

	assert.Check(t, !bytes.Contains(buf.Bytes(), []byte("hidden")))
	assert.Check(t, is.Contains(buf.String(), "msg=shown table=users"))
}

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestFanoutRespectsEachLevel(t *testing.T) {
	debug := &recordingHandler{level: slog.LevelDebug}
	warn := &recordingHandler{level: slog.LevelWarn}
	logger := slog.New(&fanout{handlers: []slog.Handler{debug, warn}})

	logger.Debug("d")
	logger.Warn("w")

	assert.Check(t, is.Len(debug.records, 2))
	assert.Check(t, is.Len(warn.records, 1))
}
