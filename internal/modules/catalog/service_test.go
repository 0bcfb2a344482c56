package catalog

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	packages map[string]*Product
	addOns   map[string]*AddOn
	calls    int
}

func (f *fakeSource) FindPackage(_ context.Context, category, name, unit string) (*Product, error) {
	f.calls++
	if p, ok := f.packages[category+"/"+name+"/"+unit]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (f *fakeSource) FindAddOn(_ context.Context, category, name string) (*AddOn, error) {
	f.calls++
	if a, ok := f.addOns[category+"/"+name]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		packages: map[string]*Product{
			"photography/Basic/shoot": {ID: "prod-basic", Category: "photography", Name: "Basic", Unit: "shoot", BasePrice: decimal.NewFromInt(199)},
		},
		addOns: map[string]*AddOn{
			"photography/Drone aerials": {ID: "addon-drone", Category: "photography", Name: "Drone aerials", Price: decimal.NewFromInt(149)},
		},
	}
}

func TestLookupWithoutCache(t *testing.T) {
	svc := NewService(newFakeSource(), nil)
	ctx := context.Background()

	p, err := svc.LookupPackage(ctx, "photography", "Basic", "shoot")
	if err != nil {
		t.Fatalf("lookup package: %v", err)
	}
	if p.ID != "prod-basic" {
		t.Fatalf("unexpected product %s", p.ID)
	}
	if _, err := svc.LookupAddOn(ctx, "photography", "Unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown add-on, got %v", err)
	}
}

func TestLookupCachesHits(t *testing.T) {
	addr := os.Getenv("SPACESELLER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPACESELLER_TEST_REDIS_ADDR not set; skipping redis-backed cache test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	rdb.Del(ctx, "catalog:addon:photography:Drone aerials")

	src := newFakeSource()
	svc := NewService(src, rdb)
	for i := 0; i < 3; i++ {
		a, err := svc.LookupAddOn(ctx, "photography", "Drone aerials")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if !a.Price.Equal(decimal.NewFromInt(149)) {
			t.Fatalf("cached price = %s", a.Price)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}
}
