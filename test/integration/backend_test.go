//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/google/uuid"

	"github.com/lvyanru/venue-chat/internal/cli/types"
)

// script answers one chat request. It returns the frames to stream, or a
// status and body for a non-OK reply.
type script func(req types.ChatRequest) (frames []string, status int, body string)

// backend is a scripted assistant server speaking the chat stream protocol
type backend struct {
	t       *testing.T
	baseURL string
	hold    chan struct{} // a frame "HOLD" blocks the stream until closed

	mu       sync.Mutex
	requests []types.ChatRequest
	scripts  []script
}

func startBackend(t *testing.T, scripts ...script) *backend {
	t.Helper()

	addr := freeAddr(t)
	b := &backend{
		t:       t,
		baseURL: "http://" + addr,
		hold:    make(chan struct{}),
		scripts: scripts,
	}

	h := server.New(
		server.WithHostPorts(addr),
		server.WithTransport(standard.NewTransporter),
		server.WithExitWaitTime(time.Second),
	)
	h.Use(recovery(t), requestLogger(t))
	h.POST("/api/chat", b.chat)

	go func() {
		if err := h.Run(); err != nil {
			t.Logf("backend stopped: %v", err)
		}
	}()
	waitForListener(t, addr)

	t.Cleanup(func() {
		b.release()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return b
}

// Requests returns the requests received so far
func (b *backend) Requests() []types.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.ChatRequest(nil), b.requests...)
}

func (b *backend) release() {
	select {
	case <-b.hold:
	default:
		close(b.hold)
	}
}

func (b *backend) chat(ctx context.Context, c *app.RequestContext) {
	var req types.ChatRequest
	if err := sonic.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "invalid body"})
		return
	}

	b.mu.Lock()
	n := len(b.requests)
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	if n >= len(b.scripts) {
		c.JSON(consts.StatusNotFound, utils.H{"error": fmt.Sprintf("no script for request %d", n+1)})
		return
	}
	frames, status, body := b.scripts[n](req)
	if status != 0 && status != consts.StatusOK {
		c.Data(status, consts.MIMEApplicationJSONUTF8, []byte(body))
		return
	}

	c.SetStatusCode(consts.StatusOK)
	writer := sse.NewWriter(c)
	for _, frame := range frames {
		if frame == "HOLD" {
			select {
			case <-b.hold:
			case <-time.After(10 * time.Second):
			}
			continue
		}
		if err := writer.WriteEvent("", "", []byte(frame)); err != nil {
			b.t.Logf("write frame: %v", err)
			return
		}
	}
}

// requestLogger logs every request with an ID
func requestLogger(t *testing.T) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Response.Header.Set("X-Request-ID", requestID)

		c.Next(ctx)

		t.Logf("%s %s -> %d in %s (request %s)",
			c.Method(), c.Path(), c.Response.StatusCode(), time.Since(start), requestID)
	}
}

// recovery turns handler panics into a 500 with an error body
func recovery(t *testing.T) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				t.Errorf("backend panic: %v\n%s", err, debug.Stack())
				c.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
				c.Abort()
			}
		}()
		c.Next(ctx)
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("backend did not start on %s", addr)
}

// frame helpers

func sessionFrame(id string) string {
	return fmt.Sprintf(`{"type":"session","session_id":%q}`, id)
}

func tokenFrame(content string) string {
	return fmt.Sprintf(`{"type":"token","content":%q}`, content)
}

func resultFrame(result string) string {
	return `{"type":"tool_result","result":` + result + `}`
}

func venueGrid(visible, total int) string {
	venues := func(n int) string {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf(`{"id":%d,"name":"Club %d","city":"Milano","score":0.9}`, i+1, i+1)
		}
		return "[" + strings.Join(items, ",") + "]"
	}
	return fmt.Sprintf(`{"type":"venue_grid","title":"Tonight","venues":%s,"all_venues":%s,"total":%d}`,
		venues(visible), venues(total), total)
}

func testLogger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
