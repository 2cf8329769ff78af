package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/venue-chat/internal/domain"
)

func TestProfileStore(t *testing.T) {
	store := NewProfileStore(filepath.Join(t.TempDir(), "state", "profile.json"), nil)

	p, err := store.Load()
	require.NoError(t, err)
	assert.False(t, p.IsComplete())
	assert.False(t, store.Source().Profile().IsComplete())

	lat, lng := 45.4642, 9.19
	want := &domain.Profile{Name: "Giulia", Lat: &lat, Lng: &lng, Genres: []string{"jazz"}}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, store.Source().Profile().IsComplete())
}

func TestProfileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	var logs bytes.Buffer
	store := NewProfileStore(path, slog.New(slog.NewTextHandler(&logs, nil)))
	_, err := store.Load()
	assert.Error(t, err)
	assert.Nil(t, store.Source().Profile())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "failed to parse profile file")
}
