package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	tags []string
	msgs []map[string]any
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.msgs = append(f.msgs, message.(map[string]any))
	return nil
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONCarriesServiceName(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Writer: &buf, Format: "json", AppName: "realestate-site"})
	l.Info("hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, `"service_name":"realestate-site"`)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Writer: &buf, Format: "json", Level: slog.LevelWarn})
	l.Info("dropped")
	assert.Empty(t, buf.String())
	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestFluentHandler(t *testing.T) {
	fp := &fakePoster{}
	var buf bytes.Buffer
	l := New(Options{
		Writer:  &buf,
		Format:  "json",
		Level:   slog.LevelDebug,
		AppName: "svc",
		Extra:   []slog.Handler{NewFluentHandler(fp, slog.LevelInfo)},
	})

	l.Debug("stdout only")
	l.With("trace_id", "abc").WithGroup("req").Error("boom", "err", errors.New("disk full"), "path", "/property")

	require.Len(t, fp.msgs, 1)
	assert.Equal(t, "error", fp.tags[0])
	msg := fp.msgs[0]
	assert.Equal(t, "boom", msg["message"])
	assert.Equal(t, "svc", msg["service_name"])
	assert.Equal(t, "abc", msg["trace_id"])
	assert.Equal(t, "disk full", msg["req.err"])
	assert.Equal(t, "/property", msg["req.path"])
	assert.NotEmpty(t, msg["timestamp"])

	assert.Contains(t, buf.String(), "stdout only")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	l := New(Options{Writer: &buf, Format: "json"})
	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("via ctx")
	assert.Contains(t, buf.String(), "via ctx")
}
