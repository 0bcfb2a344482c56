// README: Matching service tests with an in-memory provider index.
package matching

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

// memIndex returns every provider regardless of radius so the service's own filter is exercised.
type memIndex struct {
	mu        sync.Mutex
	providers map[types.ID]types.Point
}

func newMemIndex() *memIndex {
	return &memIndex{providers: make(map[types.ID]types.Point)}
}

func (m *memIndex) Upsert(_ context.Context, id types.ID, pos types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[id] = pos
	return nil
}

func (m *memIndex) Remove(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.providers, id)
	return nil
}

func (m *memIndex) Nearby(_ context.Context, _ types.Point, _ float64) ([]Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Provider, 0, len(m.providers))
	for id, pos := range m.providers {
		out = append(out, Provider{ID: id, Position: pos})
	}
	return out, nil
}

var (
	marienplatz = types.Point{Lat: 48.1374, Lng: 11.5755}
	augsburg    = types.Point{Lat: 48.3689, Lng: 10.8978}
	schwabing   = types.Point{Lat: 48.1642, Lng: 11.5840}
	berlin      = types.Point{Lat: 52.5200, Lng: 13.4050}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(newMemIndex(), TravelRule{IncludedKm: 20, PerKmRate: decimal.RequireFromString("0.50")})
	ctx := context.Background()
	for id, pos := range map[types.ID]types.Point{"p_augsburg": augsburg, "p_schwabing": schwabing, "p_berlin": berlin} {
		if err := svc.UpsertProvider(ctx, id, pos); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	return svc
}

func TestFindEligibleProviders_RanksNearestFirst(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.FindEligibleProviders(context.Background(), marienplatz, 80)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !res.Available {
		t.Fatal("expected providers to be available")
	}
	if len(res.Providers) != 2 {
		t.Fatalf("expected 2 providers within 80km, got %d", len(res.Providers))
	}
	if res.Providers[0].ID != "p_schwabing" || res.Providers[1].ID != "p_augsburg" {
		t.Fatalf("unexpected ranking: %+v", res.Providers)
	}
	if res.NearestDistanceKm != res.Providers[0].DistanceKm {
		t.Fatalf("nearest distance %f does not match first provider", res.NearestDistanceKm)
	}
	if !res.TravelCost.IsZero() {
		t.Fatalf("nearest provider within included km should be free, got %s", res.TravelCost)
	}
}

func TestFindEligibleProviders_TravelCostBeyondIncludedKm(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_ = svc.RemoveProvider(ctx, "p_schwabing")

	res, err := svc.FindEligibleProviders(ctx, marienplatz, 80)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	// Augsburg is ~56km away: ~36km beyond the included 20km at 0.50/km.
	if res.TravelCost.LessThan(decimal.NewFromInt(17)) || res.TravelCost.GreaterThan(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected travel cost %s", res.TravelCost)
	}
}

func TestFindEligibleProviders_NoneInRadius(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.FindEligibleProviders(context.Background(), types.Point{Lat: 47.0, Lng: 8.0}, 20)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if res.Available || len(res.Providers) != 0 {
		t.Fatalf("expected no providers, got %+v", res)
	}
}

func TestFindEligibleProviders_BadRadius(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.FindEligibleProviders(context.Background(), marienplatz, 0); err != ErrBadRequest {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestTravelRuleCost(t *testing.T) {
	rule := TravelRule{IncludedKm: 20, PerKmRate: decimal.RequireFromString("0.50")}
	if got := rule.Cost(10); !got.IsZero() {
		t.Errorf("Cost(10) = %s, want 0", got)
	}
	if got := rule.Cost(30); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Cost(30) = %s, want 5", got)
	}
}
