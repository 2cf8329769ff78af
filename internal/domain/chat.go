package domain

import (
	"context"
	"encoding/json"
	"io"
)

// ============ stream wire contract ============

// Event types carried by the chat stream
const (
	EventSession    = "session"
	EventToken      = "token"
	EventToolCall   = "tool_call"
	EventToolResult = "tool_result"
	EventError      = "error"
)

// StreamEvent is one decoded frame of the chat stream
type StreamEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"` // object or string
	Error     string          `json:"error,omitempty"`
}

// ChatRequest is one outbound turn
type ChatRequest struct {
	Message   string
	SessionID string // empty on the first turn
}

// GeoResult is a resolved address
type GeoResult struct {
	DisplayName string
	Lat         float64
	Lng         float64
}

// ============ collaborator interfaces ============

// ChatTransport opens the response stream of one turn. A non-OK response
// is reported as a server error (see NewServerError); anything else that
// fails before a body is available is a transport failure.
type ChatTransport interface {
	OpenChatStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error)
}

// SnapshotStore persists and restores a conversation snapshot
type SnapshotStore interface {
	// Load returns an empty snapshot when nothing was saved
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context) error
}

// Geocoder resolves addresses to coordinates and back
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeoResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// ProfileSource returns the current user profile
type ProfileSource interface {
	Profile() *Profile
}

// ProfileFunc adapts a function to ProfileSource
type ProfileFunc func() *Profile

// Profile implements ProfileSource
func (f ProfileFunc) Profile() *Profile {
	return f()
}
