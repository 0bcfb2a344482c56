package order

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/catalog"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

func photographyDraft(t *testing.T) Draft {
	t.Helper()
	basic, _ := pricing.PackageByID("photo-basic")
	drone, _ := pricing.AddOnByID("drone")
	twilight, _ := pricing.AddOnByID("twilight")
	id := types.ID("order-42")
	d := NewDraft()
	d.DraftOrderID = &id
	d.OrderNumber = "SS-2026-00042"
	d.SetAddress(fullAddress())
	d.ApplyEligibility(45, decimal.RequireFromString("12.50"))
	d.Category = pricing.CategoryPhotography
	d.Selection = pricing.Photography{Package: &basic, AddOns: []pricing.AddOn{drone, twilight}}
	requested := time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC)
	d.RequestedAt = &requested
	d.SpecialInstructions = "Key at the neighbour"
	return d
}

func newTestSubmitter(store *memStore) (*Submitter, *fakeCatalog, *fakeNotifier) {
	cat := &fakeCatalog{
		packages: map[string]*catalog.Product{"Basic": {ID: "prod-basic", Name: "Basic", Unit: "shoot"}},
		// twilight is deliberately missing from the catalog
		addOns: map[string]*catalog.AddOn{"Drone aerials": {ID: "addon-drone", Name: "Drone aerials"}},
	}
	n := &fakeNotifier{store: store}
	return NewSubmitter(store, cat, n, pricing.NewService(pricing.DefaultTaxRate)), cat, n
}

func TestSubmitWithoutDraftID(t *testing.T) {
	store := newMemStore()
	s, _, _ := newTestSubmitter(store)
	d := photographyDraft(t)
	d.DraftOrderID = nil

	_, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: d})
	if !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
	if err.Error() != "No draft order ID found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if calls := store.Calls(); len(calls) != 0 {
		t.Fatalf("no writes expected, got %v", calls)
	}
}

func TestSubmitRejectsIncompleteDraft(t *testing.T) {
	store := newMemStore()
	s, _, _ := newTestSubmitter(store)
	d := photographyDraft(t)
	d.ClearLocation()

	_, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: d})
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if calls := store.Calls(); len(calls) != 0 {
		t.Fatalf("no writes expected, got %v", calls)
	}
}

func TestSubmitPhotographyWritesInOrder(t *testing.T) {
	store := newMemStore()
	s, _, n := newTestSubmitter(store)
	d := photographyDraft(t)

	res, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: d})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []string{"MarkSubmitted", "InsertLineItem", "InsertUpgrade", "InsertAddress", "NotifyAdmins"}
	if got := store.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	wantSteps := []string{StepPrice, StepOrder, StepLineItems, StepUpgrades, StepAddress, StepNotifications}
	if !reflect.DeepEqual(res.Completed, wantSteps) {
		t.Fatalf("completed = %v, want %v", res.Completed, wantSteps)
	}

	// (199 + 149 + 99 + 12.50) * 1.19 = 546.805 -> 546.81
	if !res.Total.Equal(decimal.RequireFromString("546.81")) {
		t.Fatalf("total = %s, want 546.81", res.Total)
	}
	if got := store.totals["order-42"]; !got.Equal(res.Total) {
		t.Fatalf("persisted total = %s, want %s", got, res.Total)
	}

	item := store.items[0]
	if item.ProductID == nil || *item.ProductID != "prod-basic" {
		t.Fatalf("line item product = %v, want prod-basic", item.ProductID)
	}
	var meta packageMetadata
	if err := json.Unmarshal(item.Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.PackageID != "photo-basic" || meta.PhotoCount != 10 || meta.Tier != "basic" {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	if len(store.upgrades) != 1 || store.upgrades[0].AddOnID != "addon-drone" {
		t.Fatalf("upgrades = %+v, want only the resolved drone add-on", store.upgrades)
	}
	if len(n.sent) != 1 || n.sent[0].OrderNumber != "SS-2026-00042" {
		t.Fatalf("notification = %+v", n.sent)
	}
}

func TestSubmitLineItemCategories(t *testing.T) {
	store := newMemStore()
	s, _, _ := newTestSubmitter(store)
	sky, _ := pricing.EditingOptionByID("sky_replacement")
	id := types.ID("order-7")
	d := NewDraft()
	d.DraftOrderID = &id
	d.SetAddress(fullAddress())
	d.ApplyEligibility(150, decimal.NewFromInt(65))
	d.Category = pricing.CategoryPhotoEditing
	d.Selection = pricing.PhotoEditing{Photos: 25, UnitPrice: pricing.EditingUnitPrice, Options: []pricing.Item{sky}}

	res, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: d})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// travel cost is not charged for editing: (200 + 29) * 1.19
	if !res.Total.Equal(decimal.RequireFromString("272.51")) {
		t.Fatalf("total = %s, want 272.51", res.Total)
	}
	if len(store.items) != 2 {
		t.Fatalf("expected 2 line items, got %+v", store.items)
	}
	if store.items[0].ServiceID != pricing.EditingServiceID || store.items[0].Quantity != 25 {
		t.Fatalf("unexpected editing row %+v", store.items[0])
	}
	if !store.items[0].UnitPrice.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("editing unit price = %s, want 8", store.items[0].UnitPrice)
	}
	if countCalls(store.Calls(), "InsertUpgrade") != 0 {
		t.Fatal("editing orders carry no upgrades")
	}
}

func TestSubmitAbortsOnFailedStep(t *testing.T) {
	store := newMemStore()
	store.failOn["InsertLineItem"] = errBoom
	s, _, n := newTestSubmitter(store)

	res, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: photographyDraft(t)})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %T %v", err, err)
	}
	if stepErr.Step != StepLineItems {
		t.Fatalf("failed step = %s, want %s", stepErr.Step, StepLineItems)
	}
	if err.Error() != errBoom.Error() || !errors.Is(err, errBoom) {
		t.Fatalf("error must be the underlying one verbatim, got %q", err.Error())
	}
	if want := []string{StepPrice, StepOrder}; !reflect.DeepEqual(res.Completed, want) {
		t.Fatalf("completed = %v, want %v", res.Completed, want)
	}
	if calls := store.Calls(); !reflect.DeepEqual(calls, []string{"MarkSubmitted", "InsertLineItem"}) {
		t.Fatalf("later steps must not run, calls = %v", calls)
	}
	if len(n.sent) != 0 {
		t.Fatal("admins must not be notified after an aborted submission")
	}
}

func TestSubmitTwiceFailsAtOrderStep(t *testing.T) {
	store := newMemStore()
	s, _, _ := newTestSubmitter(store)
	d := photographyDraft(t)
	ctx := context.Background()

	if _, err := s.Submit(ctx, SubmitCommand{UserID: "u1", Draft: d}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := s.Submit(ctx, SubmitCommand{UserID: "u1", Draft: d})
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepOrder || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected order step ErrInvalidState, got %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("line items duplicated: %d", len(store.items))
	}
}

func TestSubmitUnknownPackageStillRecorded(t *testing.T) {
	store := newMemStore()
	s, cat, _ := newTestSubmitter(store)
	cat.packages = nil

	if _, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: photographyDraft(t)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(store.items) != 1 || store.items[0].ProductID != nil {
		t.Fatalf("expected one package row without product, got %+v", store.items)
	}
}

func TestSubmitCatalogOutageFailsStep(t *testing.T) {
	store := newMemStore()
	s, cat, _ := newTestSubmitter(store)
	cat.err = errBoom

	_, err := s.Submit(context.Background(), SubmitCommand{UserID: "u1", Draft: photographyDraft(t)})
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepLineItems {
		t.Fatalf("expected line_items failure, got %v", err)
	}
}
