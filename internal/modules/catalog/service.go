// README: Catalog service with a Redis read-through cache in front of the store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cacheTTL = 10 * time.Minute

type Source interface {
	FindPackage(ctx context.Context, category, name, unit string) (*Product, error)
	FindAddOn(ctx context.Context, category, name string) (*AddOn, error)
}

type Service struct {
	source Source
	cache  *redis.Client
}

// NewService accepts a nil cache; lookups then always hit the source.
func NewService(source Source, cache *redis.Client) *Service {
	return &Service{source: source, cache: cache}
}

func (s *Service) LookupPackage(ctx context.Context, category, name, unit string) (*Product, error) {
	key := fmt.Sprintf("catalog:package:%s:%s:%s", category, name, unit)
	var p Product
	if s.getCached(ctx, key, &p) {
		return &p, nil
	}
	found, err := s.source.FindPackage(ctx, category, name, unit)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, key, found)
	return found, nil
}

func (s *Service) LookupAddOn(ctx context.Context, category, name string) (*AddOn, error) {
	key := fmt.Sprintf("catalog:addon:%s:%s", category, name)
	var a AddOn
	if s.getCached(ctx, key, &a) {
		return &a, nil
	}
	found, err := s.source.FindAddOn(ctx, category, name)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, key, found)
	return found, nil
}

// Cache errors degrade to a source read.
func (s *Service) getCached(ctx context.Context, key string, v any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *Service) setCached(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
