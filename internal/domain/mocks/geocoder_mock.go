package mocks

import (
	"context"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// MockGeocoder is a mock implementation of domain.Geocoder
type MockGeocoder struct {
	GeocodeFunc        func(ctx context.Context, query string) (*domain.GeoResult, error)
	ReverseGeocodeFunc func(ctx context.Context, lat, lng float64) (string, error)
}

// Geocode mocks the Geocode method
func (m *MockGeocoder) Geocode(ctx context.Context, query string) (*domain.GeoResult, error) {
	if m.GeocodeFunc != nil {
		return m.GeocodeFunc(ctx, query)
	}
	return nil, domain.NewNotFoundError("Address", query)
}

// ReverseGeocode mocks the ReverseGeocode method
func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if m.ReverseGeocodeFunc != nil {
		return m.ReverseGeocodeFunc(ctx, lat, lng)
	}
	return "", nil
}
