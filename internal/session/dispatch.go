package session

import (
	"context"

	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/toolpayload"
)

// dispatch handles one frame. Frames are processed strictly in arrival order.
func (s *Session) dispatch(t *turn, evt *domain.StreamEvent) {
	switch evt.Type {
	case domain.EventSession:
		s.onSession(evt)
	case domain.EventToken:
		s.onToken(t, evt)
	case domain.EventToolCall:
		s.logger.Debug("tool call acknowledged")
	case domain.EventToolResult:
		s.onToolResult(t, evt)
	case domain.EventError:
		s.onError(t, evt)
	default:
		s.logger.Debug("ignoring frame", "type", evt.Type)
	}
}

func (s *Session) onSession(evt *domain.StreamEvent) {
	if evt.SessionID == "" {
		return
	}
	s.mu.Lock()
	changed := s.sessionID != evt.SessionID
	s.sessionID = evt.SessionID
	obs := s.observer
	s.mu.Unlock()

	if changed {
		s.logger.Debug("session assigned", "session_id", evt.SessionID)
		obs.SessionIDChanged(evt.SessionID)
		s.persist(context.Background())
	}
}

func (s *Session) onToken(t *turn, evt *domain.StreamEvent) {
	if evt.Content == "" {
		return
	}
	t.text.WriteString(evt.Content)
	s.progress(t.text.String())
}

// onToolResult resolves the payload. Result sets and booking embeds are
// spliced in right away, after the text that preceded them; confirmations
// wait for finalization.
func (s *Session) onToolResult(t *turn, evt *domain.StreamEvent) {
	obj, ok := s.cfg.Repairer.Decode(evt.Result)
	if !ok {
		s.logger.Debug("dropping unparsable tool result", "bytes", len(evt.Result))
		return
	}
	payload, ok := toolpayload.Resolve(obj)
	if !ok {
		s.logger.Debug("dropping unresolvable tool result")
		return
	}

	c := collected{payload: payload}
	if payload.Kind.SplicesInline() {
		if text := s.cleanText(t.text.String()); text != "" {
			s.append(domain.NewTextMessage(domain.RoleAssistant, text))
		}
		s.append(domain.NewBlockMessage(payload))
		t.text.Reset()
		s.progress("")
		c.spliced = true
	}
	t.payloads = append(t.payloads, c)
	s.logger.Debug("tool result resolved", "kind", payload.Kind, "spliced", c.spliced)
}

func (s *Session) onError(t *turn, evt *domain.StreamEvent) {
	msg := evt.Error
	if msg == "" {
		msg = "an error occurred"
	}
	t.text.WriteString(InlineErrorPrefix + msg)
	s.progress(t.text.String())
}
