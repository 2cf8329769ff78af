package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
)

func TestHertzAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := NewHertzAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	a.Infof("dial %s", "venues.example.com:443")
	a.CtxWarnf(context.Background(), "retry %d", 2)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), `msg="dial venues.example.com:443"`)
	assert.Contains(t, buf.String(), `level=WARN msg="retry 2"`)

	buf.Reset()
	a.SetLevel(hlog.LevelError)
	a.Warn("dropped")
	a.Error("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}
