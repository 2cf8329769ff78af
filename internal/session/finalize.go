package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lvyanru/venue-chat/internal/domain"
)

var linkPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// finalize closes the turn exactly once, whatever ended it, and returns the
// session to idle.
func (s *Session) finalize(ctx context.Context, t *turn) {
	cancelled := t.cancelled.Load()
	switch {
	case cancelled:
		s.setState(StateCancelled)
	case t.err != nil:
		s.setState(StateErrored)
	}
	s.setState(StateFinalizing)
	s.progress("")

	switch {
	case cancelled:
		s.closeTurn(t, true)
	case domain.IsServerError(t.err):
		s.append(domain.NewTextMessage(domain.RoleAssistant, ServerErrorPrefix+domain.UserMessage(t.err)))
	case t.err != nil:
		s.append(domain.NewTextMessage(domain.RoleAssistant, ConnectionNotice))
	default:
		s.closeTurn(t, false)
	}

	s.mu.Lock()
	s.turn = nil
	s.cancel = nil
	s.state = StateIdle
	obs := s.observer
	s.mu.Unlock()
	obs.StateChanged(StateIdle)

	s.persist(ctx)
}

// closeTurn renders deferred payloads and builds the closing message. The
// last confirmation seen becomes the overlay of that message.
func (s *Session) closeTurn(t *turn, interrupted bool) {
	var overlay *domain.Payload
	for _, c := range t.payloads {
		switch {
		case c.spliced:
		case c.payload.Kind.IsConfirmation():
			overlay = c.payload
		default:
			s.append(domain.NewBlockMessage(c.payload))
		}
	}

	body := s.cleanText(t.text.String())
	if overlay != nil {
		c := overlay.Confirmation
		body = joinParagraphs(body, fmt.Sprintf("[%s](%s)", c.TriggerLabel(), c.TriggerURL()))
	}
	// an interrupted reply always ends with the marker
	if interrupted {
		body = joinParagraphs(body, InterruptedMarker)
	}

	switch {
	case body != "":
		msg := domain.NewTextMessage(domain.RoleAssistant, body)
		msg.Overlay = overlay
		s.append(msg)
	case len(t.payloads) == 0:
		s.append(domain.NewTextMessage(domain.RoleAssistant, CompletedNotice))
	}
}

// cleanText trims the text and replaces long links, which the widgets
// already expose.
func (s *Session) cleanText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return linkPattern.ReplaceAllStringFunc(text, func(link string) string {
		if len(link) > s.cfg.LongLinkThreshold {
			return LongLinkNotice
		}
		return link
	})
}

func joinParagraphs(head, tail string) string {
	if head == "" {
		return tail
	}
	return head + "\n\n" + tail
}
