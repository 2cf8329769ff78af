// Package session runs the conversation with the venue assistant: it owns the
// message history, sends one turn at a time, reads the streamed reply and
// turns it into durable history entries.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/stream"
	"github.com/lvyanru/venue-chat/pkg/logger"
)

// Session is the context of one conversation. Only one turn runs at a time;
// Send blocks for the whole turn while Cancel and the accessors may be
// called from other goroutines.
type Session struct {
	transport domain.ChatTransport
	store     domain.SnapshotStore
	profiles  domain.ProfileSource
	logger    *slog.Logger
	cfg       Config

	mu              sync.Mutex
	observer        Observer
	state           State
	messages        []domain.Message
	sessionID       string
	profileInjected bool
	turn            *turn
	cancel          context.CancelFunc
}

// turn is the ephemeral state of one request/response cycle
type turn struct {
	text      strings.Builder
	payloads  []collected
	cancelled atomic.Bool
	err       error
}

type collected struct {
	payload *domain.Payload
	spliced bool
}

// New creates an idle session with an empty history
func New(
	cfg Config,
	transport domain.ChatTransport,
	store domain.SnapshotStore,
	profiles domain.ProfileSource,
	log *slog.Logger,
) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		transport: transport,
		store:     store,
		profiles:  profiles,
		logger:    log,
		cfg:       cfg.withDefaults(),
		observer:  NopObserver{},
	}
}

// SetObserver replaces the observer; nil restores the no-op observer
func (s *Session) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the server session identifier, empty before the first reply
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// ProfileInjected reports whether the profile prefix was already sent
func (s *Session) ProfileInjected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileInjected
}

// Messages returns a copy of the history
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages...)
}

// Snapshot returns the persisted form of the conversation
func (s *Session) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *domain.Snapshot {
	return &domain.Snapshot{
		Messages:        append([]domain.Message(nil), s.messages...),
		SessionID:       s.sessionID,
		ProfileInjected: s.profileInjected,
	}
}

// Restore loads the saved snapshot. It is rejected while a turn is open.
func (s *Session) Restore(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return domain.NewTurnInFlightError()
	}
	s.messages = append([]domain.Message(nil), snap.Messages...)
	s.sessionID = snap.SessionID
	s.profileInjected = snap.ProfileInjected
	messages := append([]domain.Message(nil), s.messages...)
	obs := s.observer
	s.mu.Unlock()

	s.logger.Debug("session restored", "messages", len(messages), "session_id", snap.SessionID)
	obs.HistoryReset(messages)
	obs.SessionIDChanged(snap.SessionID)
	return nil
}

// Clear drops the history, the session identifier and the injection flag,
// and deletes the saved snapshot.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return domain.NewTurnInFlightError()
	}
	s.messages = nil
	s.sessionID = ""
	s.profileInjected = false
	obs := s.observer
	s.mu.Unlock()

	obs.HistoryReset(nil)
	obs.SessionIDChanged("")
	if err := s.store.Delete(ctx); err != nil {
		s.logger.Warn("failed to delete session snapshot", "error", err)
		return err
	}
	return nil
}

// Cancel aborts the in-flight turn. It returns false when nothing is in flight.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn == nil || !s.state.InFlight() {
		return false
	}
	s.turn.cancelled.Store(true)
	s.cancel()
	return true
}

// Send runs one turn. It returns once the turn is finalized. A turn rejected
// up front (empty text, another turn open, incomplete profile) makes no
// network call. Server and transport failures are returned after they have
// been recorded in the history; a cancelled turn returns nil.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.NewInvalidInputError("message is empty")
	}

	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return domain.NewTurnInFlightError()
	}

	outbound := text
	if !s.profileInjected {
		profile := s.profiles.Profile()
		if !profile.IsComplete() {
			s.mu.Unlock()
			err := domain.NewProfileIncompleteError()
			s.append(domain.NewTextMessage(domain.RoleAssistant, "⚠️ "+domain.UserMessage(err)))
			return err
		}
		outbound = profile.InfoPrefix() + text
		// set before sending so a failed first turn is not re-prefixed
		s.profileInjected = true
	}

	turnCtx, cancel := context.WithCancel(ctx)
	turnLog := s.logger.With("turn_id", uuid.NewString())
	turnCtx = logger.WithContext(turnCtx, turnLog)
	t := &turn{}
	s.turn = t
	s.cancel = cancel
	s.state = StateSending
	obs := s.observer
	req := &domain.ChatRequest{Message: outbound, SessionID: s.sessionID}
	s.mu.Unlock()
	defer cancel()

	obs.StateChanged(StateSending)
	s.append(domain.NewTextMessage(domain.RoleUser, text))

	turnLog.Debug("sending turn", "session_id", req.SessionID, "length", len(outbound))
	s.run(turnCtx, t, req)
	s.finalize(ctx, t)
	return t.err
}

// run opens the stream and dispatches frames until the stream ends, fails,
// or the turn is cancelled. Failures are recorded on t.
func (s *Session) run(ctx context.Context, t *turn, req *domain.ChatRequest) {
	body, err := s.transport.OpenChatStream(ctx, req)
	if err != nil {
		s.fail(ctx, t, err)
		return
	}
	defer body.Close()

	// closing the body unblocks a pending read once the turn is cancelled
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer stop()

	s.setState(StateStreaming)

	dec := stream.NewFrameDecoder(body, logger.FromContextOr(ctx, s.logger))
	for {
		if s.aborted(ctx, t) {
			return
		}
		evt, err := dec.Next()
		if s.aborted(ctx, t) {
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			s.fail(ctx, t, err)
			return
		}
		s.dispatch(t, evt)
	}
}

// aborted reports a user abort, or a cancelled parent context which counts
// as one.
func (s *Session) aborted(ctx context.Context, t *turn) bool {
	if ctx.Err() != nil {
		t.cancelled.Store(true)
	}
	return t.cancelled.Load()
}

func (s *Session) fail(ctx context.Context, t *turn, err error) {
	if s.aborted(ctx, t) {
		return
	}
	if !domain.IsServerError(err) && !domain.IsTransportError(err) {
		err = domain.NewTransportError(err)
	}
	logger.FromContextOr(ctx, s.logger).Warn("turn failed", "error", err)
	t.err = err
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	obs := s.observer
	s.mu.Unlock()
	obs.StateChanged(state)
}

func (s *Session) append(msg domain.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	idx := len(s.messages) - 1
	obs := s.observer
	s.mu.Unlock()
	obs.MessageAppended(idx, msg)
}

func (s *Session) progress(text string) {
	s.mu.Lock()
	obs := s.observer
	s.mu.Unlock()
	obs.Progress(text)
}

// persist saves the snapshot. Failures are logged; the conversation goes on.
func (s *Session) persist(ctx context.Context) {
	if err := s.store.Save(context.WithoutCancel(ctx), s.Snapshot()); err != nil {
		s.logger.Warn("failed to save session snapshot", "error", err)
	}
}
