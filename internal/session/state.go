package session

import (
	"github.com/lvyanru/venue-chat/internal/domain"
)

// State is the phase of the current turn
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCancelled
	StateErrored
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCancelled:
		return "cancelled"
	case StateErrored:
		return "errored"
	case StateFinalizing:
		return "finalizing"
	}
	return "unknown"
}

// InFlight reports whether a turn is waiting for or reading a response
func (s State) InFlight() bool {
	return s == StateSending || s == StateStreaming
}

// Busy reports whether any turn is still open
func (s State) Busy() bool {
	return s != StateIdle
}

// Observer is told about every change a UI must reflect. Calls arrive from
// the goroutine running Send and must not call back into the Session.
type Observer interface {
	// StateChanged reports a state transition
	StateChanged(state State)
	// Progress replaces the in-progress assistant bubble; empty removes it
	Progress(text string)
	// MessageAppended reports a new history entry at index
	MessageAppended(index int, msg domain.Message)
	// MessageReplaced reports the in-place replacement of the entry at index
	MessageReplaced(index int, msg domain.Message)
	// HistoryReset reports that the history was replaced wholesale
	HistoryReset(messages []domain.Message)
	// SessionIDChanged reports a new server session identifier
	SessionIDChanged(id string)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) StateChanged(State) {}
func (NopObserver) Progress(string) {}
func (NopObserver) MessageAppended(int, domain.Message) {}
func (NopObserver) MessageReplaced(int, domain.Message) {}
func (NopObserver) HistoryReset([]domain.Message) {}
func (NopObserver) SessionIDChanged(string) {}
