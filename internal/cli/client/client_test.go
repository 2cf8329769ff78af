package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/stream"
)

func newTestClient(t *testing.T, server, geocoder string) *APIClient {
	t.Helper()
	c, err := NewAPIClient(Options{
		ServerURL:   server,
		GeocoderURL: geocoder,
		Language:    "it",
		UserAgent:   "venuectl-test",
		DialTimeout: 2 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8000", want: "http://localhost:8000"},
		{in: "https://venues.example.com/", want: "https://venues.example.com"},
		{in: "https://venues.example.com/backend/", want: "https://venues.example.com/backend"},
		{in: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenChatStream(t *testing.T) {
	var got struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range []string{
			`data: {"type":"session","session_id":"s-42"}`,
			`data: {"type":"token","content":"Ciao"}`,
		} {
			_, _ = io.WriteString(w, frame+"\n\n")
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	body, err := c.OpenChatStream(context.Background(), &domain.ChatRequest{Message: "hi", SessionID: "s-41"})
	require.NoError(t, err)
	defer body.Close()

	dec := stream.NewFrameDecoder(body, nil)
	evt, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "s-42", evt.SessionID)
	evt, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "Ciao", evt.Content)
	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "hi", got.Message)
	assert.Equal(t, "s-41", got.SessionID)
	assert.NoError(t, body.Close())
}

func TestOpenChatStream_ServerError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "error field", status: http.StatusTooManyRequests, body: `{"error":"quota exceeded"}`, want: "quota exceeded"},
		{name: "detail field", status: http.StatusUnprocessableEntity, body: `{"detail":"message required"}`, want: "message required"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "Unable to complete the request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, srv.URL)
			_, err := c.OpenChatStream(context.Background(), &domain.ChatRequest{Message: "hi"})
			require.Error(t, err)
			assert.True(t, domain.IsServerError(err))
			assert.Equal(t, tt.want, domain.UserMessage(err))
		})
	}
}

func TestOpenChatStream_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newTestClient(t, addr, addr)
	_, err := c.OpenChatStream(context.Background(), &domain.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err))
}

func TestOpenChatStream_CancelWhileWaitingForHeaders(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	body, err := c.OpenChatStream(ctx, &domain.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Nil(t, body)
	assert.True(t, domain.IsTransportError(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestOpenChatStream_ResponseTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewAPIClient(Options{
		ServerURL:       srv.URL,
		GeocoderURL:     srv.URL,
		ResponseTimeout: 100 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.OpenChatStream(context.Background(), &domain.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.True(t, domain.IsTransportError(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "it", r.Header.Get("Accept-Language"))
		assert.Equal(t, "venuectl-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("q") == "nowhere" {
				_, _ = io.WriteString(w, `[]`)
				return
			}
			assert.Equal(t, "Via Roma 1, Milano", r.URL.Query().Get("q"))
			_, _ = io.WriteString(w, `[{"display_name":"Via Roma 1, Milano, Italia","lat":"45.4642","lon":"9.19"}]`)
		case "/reverse":
			assert.Equal(t, "45.4642", r.URL.Query().Get("lat"))
			assert.Equal(t, "9.19", r.URL.Query().Get("lon"))
			_, _ = io.WriteString(w, `{"display_name":"Piazza del Duomo, Milano"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	ctx := context.Background()

	res, err := c.Geocode(ctx, " Via Roma 1, Milano ")
	require.NoError(t, err)
	assert.Equal(t, "Via Roma 1, Milano, Italia", res.DisplayName)
	assert.InDelta(t, 45.4642, res.Lat, 1e-9)
	assert.InDelta(t, 9.19, res.Lng, 1e-9)

	_, err = c.Geocode(ctx, "nowhere")
	assert.True(t, domain.IsNotFound(err))

	_, err = c.Geocode(ctx, "  ")
	assert.True(t, domain.IsInvalidInput(err))

	name, err := c.ReverseGeocode(ctx, 45.4642, 9.19)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "Piazza del Duomo"))
}
