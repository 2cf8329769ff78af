package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
kind: Profile
spec:
  name: Giulia
  surname: Bianchi
  phone: "+39 333 1234567"
  address: Via Roma 1, Milano
  location:
    lat: 45.4642
    lng: 9.19
  genres: [techno, " house ", ""]
  budget:
    min: 20
    max: 60
  partySize: 4
`)

	file, err := LoadFromFile(path)
	require.NoError(t, err)

	p, err := file.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, "Giulia", p.Name)
	assert.Equal(t, []string{"techno", "house"}, p.Genres)
	require.NotNil(t, p.Lat)
	assert.InDelta(t, 45.4642, *p.Lat, 1e-9)
	assert.Equal(t, 60.0, *p.BudgetMax)
	assert.Equal(t, 4, *p.PartySize)
	assert.True(t, p.IsComplete())
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing kind", body: "spec:\n  name: x\n"},
		{name: "wrong kind", body: "kind: DataDescriptor\nspec: {}\n"},
		{name: "bad yaml", body: "kind: [Profile\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestToProfile_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "latitude", spec: "location: {lat: 91, lng: 9}"},
		{name: "longitude", spec: "location: {lat: 45, lng: -181}"},
		{name: "negative budget", spec: "budget: {min: -1}"},
		{name: "inverted budget", spec: "budget: {min: 50, max: 10}"},
		{name: "party size", spec: "partySize: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := LoadFromFile(writeFile(t, "kind: Profile\nspec:\n  "+tt.spec+"\n"))
			require.NoError(t, err)
			_, err = file.ToProfile()
			assert.Error(t, err)
		})
	}
}
