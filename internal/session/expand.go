package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// Expand grows the most recent result set in place by the configured
// increment. It fails with a not-expandable error when the full list is not
// held locally or is already fully shown.
func (s *Session) Expand(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return domain.NewTurnInFlightError()
	}
	idx := s.lastResultSetLocked()
	if idx < 0 {
		s.mu.Unlock()
		return domain.NewNotFoundError("result set", "latest")
	}

	msg := s.messages[idx]
	next, ok := msg.Block.ResultSet.Expand(s.cfg.ExpandIncrement)
	if !ok {
		s.mu.Unlock()
		return domain.NewNotExpandableError()
	}
	msg.Block = &domain.Payload{Kind: domain.KindResultSet, ResultSet: next}
	s.messages[idx] = msg
	obs := s.observer
	s.mu.Unlock()

	s.logger.Debug("result set expanded", "index", idx, "visible", len(next.Venues), "total", len(next.AllVenues))
	obs.MessageReplaced(idx, msg)
	s.persist(ctx)
	return nil
}

// ShowMore expands the latest result set, or asks the assistant for more
// venues when it cannot be grown locally.
func (s *Session) ShowMore(ctx context.Context) error {
	err := s.Expand(ctx)
	if domain.IsNotExpandable(err) || domain.IsNotFound(err) {
		return s.Send(ctx, s.cfg.ShowMorePrompt)
	}
	return err
}

// Book asks the assistant to book the venue at position n (1-based) of the
// latest result set.
func (s *Session) Book(ctx context.Context, n int) error {
	s.mu.Lock()
	idx := s.lastResultSetLocked()
	var venue *domain.Venue
	if idx >= 0 {
		venues := s.messages[idx].Block.ResultSet.Venues
		if n >= 1 && n <= len(venues) {
			venue = &venues[n-1]
		}
	}
	s.mu.Unlock()

	if venue == nil {
		return domain.NewNotFoundError("venue", strconv.Itoa(n))
	}
	return s.Send(ctx, fmt.Sprintf(s.cfg.BookPrompt, venue.Name))
}

func (s *Session) lastResultSetLocked() int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsBlock(domain.KindResultSet) && s.messages[i].Block.ResultSet != nil {
			return i
		}
	}
	return -1
}
