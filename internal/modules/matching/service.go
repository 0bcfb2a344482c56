// README: Matching service answers "which providers can serve this location, at what travel cost".
package matching

import (
	"context"
	"errors"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Index interface {
	Upsert(ctx context.Context, id types.ID, pos types.Point) error
	Remove(ctx context.Context, id types.ID) error
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Provider, error)
}

type Service struct {
	index Index
	rule  TravelRule
}

func NewService(index Index, rule TravelRule) *Service {
	return &Service{index: index, rule: rule}
}

func (s *Service) UpsertProvider(ctx context.Context, id types.ID, pos types.Point) error {
	if id == "" {
		return ErrBadRequest
	}
	return s.index.Upsert(ctx, id, pos)
}

func (s *Service) RemoveProvider(ctx context.Context, id types.ID) error {
	return s.index.Remove(ctx, id)
}

// FindEligibleProviders ranks providers within maxRadiusKm of the location. Travel cost is
// derived from the nearest provider.
func (s *Service) FindEligibleProviders(ctx context.Context, loc types.Point, maxRadiusKm float64) (Eligibility, error) {
	if maxRadiusKm <= 0 {
		return Eligibility{}, ErrBadRequest
	}
	candidates, err := s.index.Nearby(ctx, loc, maxRadiusKm)
	if err != nil {
		return Eligibility{}, err
	}
	providers := make([]Provider, 0, len(candidates))
	for _, c := range candidates {
		c.DistanceKm = distanceKm(loc, c.Position)
		if c.DistanceKm > maxRadiusKm {
			continue
		}
		providers = append(providers, c)
	}
	if len(providers) == 0 {
		return Eligibility{Available: false, Providers: providers}, nil
	}
	rankByDistance(providers)
	nearest := providers[0].DistanceKm
	return Eligibility{
		Available:         true,
		Providers:         providers,
		NearestDistanceKm: nearest,
		TravelCost:        s.rule.Cost(nearest),
	}, nil
}
