package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/toolpayload"
)

func TestSnapshotRepository_MissingFile(t *testing.T) {
	repo := NewSnapshotRepository(filepath.Join(t.TempDir(), "session.json"))

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.SessionID)
	assert.False(t, snap.ProfileInjected)

	assert.NoError(t, repo.Delete(context.Background()))
}

func TestSnapshotRepository_SaveLoadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	repo := NewSnapshotRepository(path)

	obj, ok := toolpayload.Extract(`{"type":"venue_grid","venues":[{"id":1,"name":"Magazzini"}],"all_venues":[{"id":1,"name":"Magazzini"},{"id":"2","name":"Tunnel"}]}`)
	require.True(t, ok)
	grid, ok := toolpayload.Resolve(obj)
	require.True(t, ok)

	obj, ok = toolpayload.Extract(`{"reservation":{"table_number":4},"reservation_url":"https://r.example/x"}`)
	require.True(t, ok)
	confirmation, ok := toolpayload.Resolve(obj)
	require.True(t, ok)

	closing := domain.NewTextMessage(domain.RoleAssistant, "Booked")
	closing.Overlay = confirmation

	want := &domain.Snapshot{
		Messages: []domain.Message{
			domain.NewTextMessage(domain.RoleUser, "hi"),
			domain.NewBlockMessage(grid),
			closing,
		},
		SessionID:       "s-1",
		ProfileInjected: true,
	}
	require.NoError(t, repo.Save(context.Background(), want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "s-1", got.SessionID)
	assert.True(t, got.ProfileInjected)
	assert.Equal(t, want.Messages[0].ID, got.Messages[0].ID)

	block := got.Messages[1]
	require.True(t, block.IsBlock(domain.KindResultSet))
	assert.Len(t, block.Block.ResultSet.AllVenues, 2)
	assert.Equal(t, domain.FlexString("2"), block.Block.ResultSet.AllVenues[1].ID)

	require.NotNil(t, got.Messages[2].Overlay)
	assert.Equal(t, domain.KindReservation, got.Messages[2].Overlay.Kind)
	assert.Equal(t, "Table 4", got.Messages[2].Overlay.Confirmation.TriggerLabel())

	require.NoError(t, repo.Delete(context.Background()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotRepository_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewSnapshotRepository(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSnapshotRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewSnapshotRepository(filepath.Join(t.TempDir(), "session.json"))
	assert.ErrorIs(t, repo.Save(ctx, &domain.Snapshot{}), context.Canceled)
}
