package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var ErrNoResult = errors.New("address could not be geocoded")

// GeocodeService resolves postal addresses to coordinates with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
	region string
}

// NewGeocodeService creates a GeocodeService biased to German addresses.
func NewGeocodeService(apiKey string, opts ...maps.ClientOption) (*GeocodeService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client, region: "de"}, nil
}

// Geocode returns the first result's location.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   s.region,
		Language: "de",
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return types.Point{}, ErrNoResult
		}
		return types.Point{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoResult
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
