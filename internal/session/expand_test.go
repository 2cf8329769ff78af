package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/domain/mocks"
)

func sessionWithResultSet(t *testing.T, result string, store *mocks.MockSnapshotStore) (*Session, *mocks.MockChatTransport) {
	t.Helper()
	transport := bodyTransport(frames(token("Here:"), toolResult(result), token("Enjoy")))
	s := newTestSession(transport, store)
	require.NoError(t, s.Send(context.Background(), "venues"))
	return s, transport
}

func TestExpand_GrowsInPlaceUntilCap(t *testing.T) {
	s, _ := sessionWithResultSet(t, resultSetJSON(10, 40), nil)
	rec := newRecorder()
	s.SetObserver(rec)

	before := s.Messages()
	idx := 2
	require.True(t, before[idx].IsBlock(domain.KindResultSet))

	for _, want := range []int{16, 22, 28, 34, 40} {
		require.NoError(t, s.Expand(context.Background()))
		msgs := s.Messages()
		require.Len(t, msgs, len(before))
		assert.Equal(t, before[idx].ID, msgs[idx].ID)
		assert.Len(t, msgs[idx].Block.ResultSet.Venues, want)
	}

	err := s.Expand(context.Background())
	assert.True(t, domain.IsNotExpandable(err))
	assert.Len(t, s.Messages()[idx].Block.ResultSet.Venues, 40)
	assert.Equal(t, []int{idx, idx, idx, idx, idx}, rec.replaced)
}

func TestExpand_NotExpandableWithoutFullList(t *testing.T) {
	s, _ := sessionWithResultSet(t, `{"type":"venue_grid","venues":`+venuesJSON(5)+`,"total":30}`, nil)

	err := s.Expand(context.Background())
	assert.True(t, domain.IsNotExpandable(err))
}

func TestExpand_NoResultSet(t *testing.T) {
	s := newTestSession(bodyTransport(frames(token("hi"))), nil)
	require.NoError(t, s.Send(context.Background(), "hello"))

	err := s.Expand(context.Background())
	assert.True(t, domain.IsNotFound(err))
}

func TestExpand_Persists(t *testing.T) {
	store := &mocks.MockSnapshotStore{}
	s, _ := sessionWithResultSet(t, resultSetJSON(2, 5), store)
	saves := store.SaveCount

	require.NoError(t, s.Expand(context.Background()))
	assert.Equal(t, saves+1, store.SaveCount)
	assert.Len(t, store.Saved.Messages[2].Block.ResultSet.Venues, 5)
}

func TestShowMore(t *testing.T) {
	t.Run("expands locally", func(t *testing.T) {
		s, transport := sessionWithResultSet(t, resultSetJSON(10, 40), nil)

		require.NoError(t, s.ShowMore(context.Background()))
		assert.Len(t, transport.Requests, 1)
		assert.Len(t, s.Messages()[2].Block.ResultSet.Venues, 16)
	})

	t.Run("falls back to a new request", func(t *testing.T) {
		s, transport := sessionWithResultSet(t, `{"type":"venue_grid","venues":`+venuesJSON(5)+`}`, nil)

		require.NoError(t, s.ShowMore(context.Background()))
		require.Len(t, transport.Requests, 2)
		assert.Equal(t, DefaultConfig().ShowMorePrompt, transport.Requests[1].Message)
	})
}

func TestBook(t *testing.T) {
	s, transport := sessionWithResultSet(t, resultSetJSON(3, 3), nil)

	require.NoError(t, s.Book(context.Background(), 2))
	require.Len(t, transport.Requests, 2)
	assert.Equal(t, "I'd like to book a table at Venue 2", transport.Requests[1].Message)

	err := s.Book(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, transport.Requests, 2)
}

func TestClear(t *testing.T) {
	store := &mocks.MockSnapshotStore{}
	s, transport := sessionWithResultSet(t, resultSetJSON(1, 1), store)
	require.NotNil(t, store.Saved)

	require.NoError(t, s.Clear(context.Background()))
	assert.Empty(t, s.Messages())
	assert.Empty(t, s.SessionID())
	assert.False(t, s.ProfileInjected())
	assert.Nil(t, store.Saved)

	// the next turn is a first turn again
	require.NoError(t, s.Send(context.Background(), "again"))
	assert.Contains(t, transport.Requests[len(transport.Requests)-1].Message, "INFO UTENTE")
}

func TestClear_StoreFailure(t *testing.T) {
	store := &mocks.MockSnapshotStore{
		DeleteFunc: func(ctx context.Context) error { return errors.New("read-only file system") },
	}
	s := newTestSession(&mocks.MockChatTransport{}, store)

	assert.Error(t, s.Clear(context.Background()))
	assert.Empty(t, s.Messages())
}

func TestRestore(t *testing.T) {
	saved := &domain.Snapshot{
		Messages: []domain.Message{
			domain.NewTextMessage(domain.RoleUser, "hi"),
			domain.NewTextMessage(domain.RoleAssistant, "hello"),
		},
		SessionID:       "s-restored",
		ProfileInjected: true,
	}
	store := &mocks.MockSnapshotStore{
		LoadFunc: func(ctx context.Context) (*domain.Snapshot, error) { return saved, nil },
	}
	transport := bodyTransport(frames(token("welcome back")))
	s := newTestSession(transport, store)

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, saved.Messages, s.Messages())
	assert.Equal(t, "s-restored", s.SessionID())

	require.NoError(t, s.Send(context.Background(), "what's next"))
	require.Len(t, transport.Requests, 1)
	assert.Equal(t, "what's next", transport.Requests[0].Message)
	assert.Equal(t, "s-restored", transport.Requests[0].SessionID)
}

func TestRestore_LoadError(t *testing.T) {
	store := &mocks.MockSnapshotStore{
		LoadFunc: func(ctx context.Context) (*domain.Snapshot, error) { return nil, errors.New("corrupt") },
	}
	s := newTestSession(&mocks.MockChatTransport{}, store)

	assert.Error(t, s.Restore(context.Background()))
	assert.Empty(t, s.Messages())
}
