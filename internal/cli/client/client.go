package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/lvyanru/venue-chat/internal/cli/types"
	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/pkg/logger"
)

// Options configures APIClient
type Options struct {
	ServerURL           string
	ChatPath            string
	DialTimeout         time.Duration
	ResponseTimeout     time.Duration
	MaxIdleConnDuration time.Duration

	GeocoderURL string
	Language    string
	UserAgent   string
}

// APIClient wraps Hertz Client for the chat backend and the geocoder
type APIClient struct {
	client          *client.Client
	responseTimeout time.Duration
	chatURL         string
	geocoderURL     string
	language        string
	userAgent       string
	logger          *slog.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(opts Options, log *slog.Logger) (*APIClient, error) {
	server, err := normalizeURL(opts.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	geocoder, err := normalizeURL(opts.GeocoderURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder URL: %w", err)
	}
	chatPath := opts.ChatPath
	if chatPath == "" {
		chatPath = defaultChatPath
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.ResponseTimeout <= 0 {
		opts.ResponseTimeout = 2 * time.Minute
	}
	if opts.MaxIdleConnDuration <= 0 {
		opts.MaxIdleConnDuration = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	// Use standard library dialer for streaming support
	// netpoll doesn't support streaming well, causing panics
	c, err := client.NewClient(
		client.WithDialTimeout(opts.DialTimeout),
		client.WithMaxIdleConnDuration(opts.MaxIdleConnDuration),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client:          c,
		responseTimeout: opts.ResponseTimeout,
		chatURL:         server + chatPath,
		geocoderURL:     geocoder,
		language:        opts.Language,
		userAgent:       opts.UserAgent,
		logger:          log,
	}, nil
}

// normalizeURL adds a missing scheme and drops the trailing slash
func normalizeURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q", raw)
	}
	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimRight(u.Path, "/")), nil
}

// OpenChatStream posts one turn and returns the response body as it streams.
// A non-200 response becomes a server error carrying the server's message;
// failures before any response are transport errors, including a server
// that sends no headers within the response timeout. Cancelling ctx while
// waiting for the headers returns at once.
func (c *APIClient) OpenChatStream(ctx context.Context, chat *domain.ChatRequest) (io.ReadCloser, error) {
	log := logger.FromContextOr(ctx, c.logger)

	bodyBytes, err := sonic.Marshal(types.ChatRequest{
		Message:   chat.Message,
		SessionID: chat.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// not pooled: the response outlives this call and may be closed from
	// another goroutine
	req := &protocol.Request{}
	resp := &protocol.Response{}
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.chatURL)
	req.Header.SetContentTypeBytes([]byte(contentTypeJSON))
	req.Header.Set("Accept", acceptStream)
	req.SetBody(bodyBytes)

	if err := c.do(ctx, req, resp); err != nil {
		log.Warn("chat request failed", "url", c.chatURL, "error", err)
		return nil, domain.NewTransportError(err)
	}

	if status := resp.StatusCode(); status != consts.StatusOK {
		message := errorMessage(resp.Body())
		_ = resp.CloseBodyStream()
		log.Warn("chat request rejected", "status", status, "message", message)
		return nil, domain.NewServerError(status, message)
	}

	stream := resp.BodyStream()
	if stream == nil {
		return io.NopCloser(bytes.NewReader(resp.Body())), nil
	}
	return &streamBody{reader: stream, resp: resp}, nil
}

// do runs the request until the response headers arrive, ctx is done or
// the response timeout passes. Hertz only applies ctx to dialing, and its
// read timeout would also cut the streamed body, so the wait is bounded
// here. An abandoned request finishes in the background and its body is
// released there.
func (c *APIClient) do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	done := make(chan error, 1)
	go func() {
		done <- c.client.Do(ctx, req, resp)
	}()

	timer := time.NewTimer(c.responseTimeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = fmt.Errorf("no response within %s", c.responseTimeout)
	}

	go func() {
		if doErr := <-done; doErr == nil {
			_ = resp.CloseBodyStream()
		}
	}()
	return err
}

// errorMessage extracts the error field of a JSON error body
func errorMessage(body []byte) string {
	var e types.ErrorResponse
	if err := sonic.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}

// streamBody closes the underlying connection at most once
type streamBody struct {
	reader io.Reader
	resp   *protocol.Response
	once   sync.Once
	err    error
}

func (b *streamBody) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *streamBody) Close() error {
	b.once.Do(func() {
		b.err = b.resp.CloseBodyStream()
	})
	return b.err
}
