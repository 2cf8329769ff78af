package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// MockChatTransport is a mock implementation of domain.ChatTransport
type MockChatTransport struct {
	OpenChatStreamFunc func(ctx context.Context, req *domain.ChatRequest) (io.ReadCloser, error)

	// Requests records every request passed to OpenChatStream
	Requests []domain.ChatRequest
}

// OpenChatStream mocks the OpenChatStream method
func (m *MockChatTransport) OpenChatStream(ctx context.Context, req *domain.ChatRequest) (io.ReadCloser, error) {
	m.Requests = append(m.Requests, *req)
	if m.OpenChatStreamFunc != nil {
		return m.OpenChatStreamFunc(ctx, req)
	}
	return io.NopCloser(strings.NewReader("")), nil
}
