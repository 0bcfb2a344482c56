// README: Provider index backed by Redis GEO.
package matching

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

const providerGeoKey = "matching:providers"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Upsert(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, providerGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *Store) Remove(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, providerGeoKey, string(id)).Err()
}

func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Provider, error) {
	results, err := s.redis.GeoSearchLocation(ctx, providerGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Provider, len(results))
	for i, r := range results {
		out[i] = Provider{
			ID:       types.ID(r.Name),
			Position: types.Point{Lat: r.Latitude, Lng: r.Longitude},
		}
	}
	return out, nil
}
