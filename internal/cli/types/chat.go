package types

// ChatRequest is the body of one chat turn
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"` // absent on the first turn
}

// ErrorResponse is the body of a non-OK chat response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
