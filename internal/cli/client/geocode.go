package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/lvyanru/venue-chat/internal/cli/types"
	"github.com/lvyanru/venue-chat/internal/domain"
)

// Geocode resolves an address to its best match
func (c *APIClient) Geocode(ctx context.Context, query string) (*domain.GeoResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewInvalidInputError("address is empty")
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", query)

	var places []types.Place
	if err := c.getJSON(ctx, endpointSearch, params, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.NewNotFoundError("address", query)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return nil, fmt.Errorf("geocoder returned invalid coordinates %q, %q", places[0].Lat, places[0].Lon)
	}
	return &domain.GeoResult{DisplayName: places[0].DisplayName, Lat: lat, Lng: lng}, nil
}

// ReverseGeocode returns the address at the given coordinates
func (c *APIClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	var place types.ReversePlace
	if err := c.getJSON(ctx, endpointReverse, params, &place); err != nil {
		return "", err
	}
	if place.DisplayName == "" {
		return "", domain.NewNotFoundError("address", fmt.Sprintf("%.4f, %.4f", lat, lng))
	}
	return place.DisplayName, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		_ = resp.CloseBodyStream()
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.geocoderURL + path + "?" + params.Encode())
	req.Header.Set("Accept", contentTypeJSON)
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	if c.userAgent != "" {
		req.Header.SetUserAgentBytes([]byte(c.userAgent))
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return domain.NewTransportError(err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return fmt.Errorf("geocoder failed with HTTP status: %d", resp.StatusCode())
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal geocoder response: %w", err)
	}
	return nil
}
