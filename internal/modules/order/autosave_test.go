package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/metrics"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type draftBox struct {
	mu sync.Mutex
	d  Draft
}

func (b *draftBox) get() Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.d
}

func (b *draftBox) update(fn func(d *Draft)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.d)
}

func newBox() *draftBox {
	id := types.ID("order-1")
	d := submittableDraft()
	d.DraftOrderID = &id
	return &draftBox{d: d}
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestAutosaveSkipsUnchangedDraft(t *testing.T) {
	store := newMemStore()
	box := newBox()
	a := NewAutosaver(store, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{})
	ctx := context.Background()

	if got := a.Save(ctx); got != metrics.AutosaveWritten {
		t.Fatalf("first save = %s, want written", got)
	}
	if got := a.Save(ctx); got != metrics.AutosaveUnchanged {
		t.Fatalf("second save = %s, want unchanged", got)
	}
	if n := countCalls(store.Calls(), "UpdateDraftTotal"); n != 1 {
		t.Fatalf("UpdateDraftTotal called %d times, want 1", n)
	}
	// 2 rooms x 50 = 100, +19% tax
	if got := store.totals["order-1"]; !got.Equal(decimal.NewFromInt(119)) {
		t.Fatalf("saved total = %s, want 119", got)
	}

	box.update(func(d *Draft) { d.Step = StepConfiguration })
	if got := a.Save(ctx); got != metrics.AutosaveWritten {
		t.Fatalf("save after change = %s, want written", got)
	}
}

func TestAutosaveAddressNeedsStreetAndPostalCode(t *testing.T) {
	store := newMemStore()
	box := newBox()
	box.update(func(d *Draft) { d.Address.PostalCode = "" })
	a := NewAutosaver(store, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{})

	a.Save(context.Background())
	calls := store.Calls()
	if countCalls(calls, "UpsertDraftAddress") != 0 {
		t.Fatalf("address must not be upserted without postal code: %v", calls)
	}
	if countCalls(calls, "UpdateDraftTotal") != 1 {
		t.Fatalf("total should still be written: %v", calls)
	}
}

func TestAutosaveWithoutDraftIDDoesNothing(t *testing.T) {
	store := newMemStore()
	box := newBox()
	box.update(func(d *Draft) { d.DraftOrderID = nil })
	a := NewAutosaver(store, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{})

	a.Save(context.Background())
	if calls := store.Calls(); len(calls) != 0 {
		t.Fatalf("expected no writes, got %v", calls)
	}
}

func TestAutosaveFailureKeepsDraftDirty(t *testing.T) {
	store := newMemStore()
	store.failOn["UpdateDraftTotal"] = errBoom
	box := newBox()
	a := NewAutosaver(store, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{})
	ctx := context.Background()

	if got := a.Save(ctx); got != metrics.AutosaveFailed {
		t.Fatalf("save = %s, want failed", got)
	}
	store.mu.Lock()
	delete(store.failOn, "UpdateDraftTotal")
	store.mu.Unlock()
	if got := a.Save(ctx); got != metrics.AutosaveWritten {
		t.Fatalf("retry = %s, want written", got)
	}
}

// blockingWriter holds the first write until released.
type blockingWriter struct {
	*memStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingWriter) UpdateDraftTotal(ctx context.Context, id types.ID, total decimal.Decimal) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.memStore.UpdateDraftTotal(ctx, id, total)
}

func TestAutosaveDropsRequestWhileInFlight(t *testing.T) {
	w := &blockingWriter{memStore: newMemStore(), entered: make(chan struct{}), release: make(chan struct{})}
	box := newBox()
	a := NewAutosaver(w, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{})
	ctx := context.Background()

	first := make(chan string, 1)
	go func() { first <- a.Save(ctx) }()
	<-w.entered

	box.update(func(d *Draft) { d.Step = StepReview })
	if got := a.Save(ctx); got != metrics.AutosaveDropped {
		t.Fatalf("concurrent save = %s, want dropped", got)
	}
	close(w.release)
	if got := <-first; got != metrics.AutosaveWritten {
		t.Fatalf("first save = %s, want written", got)
	}
	if n := countCalls(w.Calls(), "UpdateDraftTotal"); n != 1 {
		t.Fatalf("UpdateDraftTotal called %d times, want 1", n)
	}
}

func TestAutosaveLoopStopsOnTeardown(t *testing.T) {
	store := newMemStore()
	box := newBox()
	a := NewAutosaver(store, pricing.NewService(pricing.DefaultTaxRate), box.get, AutosaveOptions{
		InitialDelay: 5 * time.Millisecond,
		Interval:     5 * time.Millisecond,
	})
	a.Start(context.Background())
	a.Start(context.Background()) // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for countCalls(store.Calls(), "UpdateDraftTotal") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("autosave loop never wrote")
		}
		time.Sleep(2 * time.Millisecond)
	}

	a.Stop()
	if a.Running() {
		t.Fatal("autosaver still running after Stop")
	}
	before := len(store.Calls())
	box.update(func(d *Draft) { d.Step = StepReview })
	time.Sleep(30 * time.Millisecond)
	if after := len(store.Calls()); after != before {
		t.Fatalf("writes after Stop: %d -> %d", before, after)
	}
	a.Stop()
}
