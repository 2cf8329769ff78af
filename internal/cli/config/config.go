package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// ProfileStore keeps the user profile in a JSON file
type ProfileStore struct {
	path   string
	logger *slog.Logger
}

// NewProfileStore creates a store for the file at path
func NewProfileStore(path string, log *slog.Logger) *ProfileStore {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileStore{path: path, logger: log}
}

// Path returns the profile file path
func (s *ProfileStore) Path() string {
	return s.path
}

// Load reads the profile. A missing file yields an empty profile.
func (s *ProfileStore) Load() (*domain.Profile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p domain.Profile
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}
	return &p, nil
}

// Save writes the profile (0600 permission, user read/write only)
func (s *ProfileStore) Save(p *domain.Profile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// Source returns a ProfileSource that reloads the file on every call, so
// edits made in another terminal apply to the next first turn. An
// unreadable file is logged and treated as no profile.
func (s *ProfileStore) Source() domain.ProfileSource {
	return domain.ProfileFunc(func() *domain.Profile {
		p, err := s.Load()
		if err != nil {
			s.logger.Warn("failed to load profile", "path", s.path, "error", err)
			return nil
		}
		return p
	})
}
