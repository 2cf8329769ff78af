package mocks

import (
	"context"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// MockSnapshotStore is a mock implementation of domain.SnapshotStore
type MockSnapshotStore struct {
	LoadFunc   func(ctx context.Context) (*domain.Snapshot, error)
	SaveFunc   func(ctx context.Context, snapshot *domain.Snapshot) error
	DeleteFunc func(ctx context.Context) error

	// Saved holds the last snapshot passed to Save
	Saved     *domain.Snapshot
	SaveCount int
}

// Load mocks the Load method
func (m *MockSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return &domain.Snapshot{}, nil
}

// Save mocks the Save method
func (m *MockSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	m.Saved = snapshot
	m.SaveCount++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshot)
	}
	return nil
}

// Delete mocks the Delete method
func (m *MockSnapshotStore) Delete(ctx context.Context) error {
	m.Saved = nil
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx)
	}
	return nil
}
