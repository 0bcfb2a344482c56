package order

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/catalog"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

// memStore records every write in call order.
type memStore struct {
	mu       sync.Mutex
	calls    []string
	failOn   map[string]error
	totals   map[types.ID]decimal.Decimal
	address  map[types.ID]Address
	items    []LineItem
	upgrades []Upgrade
	status   map[types.ID]Status
	seq      int64
	seqErr   error
	drafts   map[types.ID]string
}

func newMemStore() *memStore {
	return &memStore{
		failOn:  map[string]error{},
		totals:  map[types.ID]decimal.Decimal{},
		address: map[types.ID]Address{},
		status:  map[types.ID]Status{},
		drafts:  map[types.ID]string{},
	}
}

func (m *memStore) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.failOn[call]
}

func (m *memStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memStore) NextOrderNumber(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqErr != nil {
		return 0, m.seqErr
	}
	m.seq++
	return m.seq, nil
}

func (m *memStore) CreateDraft(_ context.Context, id, _ types.ID, orderNumber string) error {
	if err := m.record("CreateDraft"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[id] = orderNumber
	m.status[id] = StatusDraft
	return nil
}

func (m *memStore) UpdateDraftTotal(_ context.Context, id types.ID, total decimal.Decimal) error {
	if err := m.record("UpdateDraftTotal"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[id] = total
	return nil
}

func (m *memStore) UpsertDraftAddress(_ context.Context, id types.ID, a Address) error {
	if err := m.record("UpsertDraftAddress"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.address[id] = a
	return nil
}

func (m *memStore) MarkSubmitted(_ context.Context, rec SubmittedRecord) error {
	if err := m.record("MarkSubmitted"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.status[rec.OrderID]; ok && st != StatusDraft {
		return ErrInvalidState
	}
	m.status[rec.OrderID] = StatusSubmitted
	m.totals[rec.OrderID] = rec.Total
	return nil
}

func (m *memStore) InsertLineItem(_ context.Context, item LineItem) error {
	if err := m.record("InsertLineItem"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *memStore) InsertUpgrade(_ context.Context, u Upgrade) error {
	if err := m.record("InsertUpgrade"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upgrades = append(m.upgrades, u)
	return nil
}

func (m *memStore) InsertAddress(_ context.Context, id types.ID, _ string, a Address) error {
	if err := m.record("InsertAddress"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.address[id] = a
	return nil
}

type fakeCatalog struct {
	packages map[string]*catalog.Product
	addOns   map[string]*catalog.AddOn
	err      error
}

func (f *fakeCatalog) LookupPackage(_ context.Context, _, name, _ string) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.packages[name]; ok {
		return p, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) LookupAddOn(_ context.Context, _, name string) (*catalog.AddOn, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.addOns[name]; ok {
		return a, nil
	}
	return nil, catalog.ErrNotFound
}

type fakeNotifier struct {
	store *memStore
	sent  []Submitted
	err   error
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, s Submitted) error {
	if f.store != nil {
		_ = f.store.record("NotifyAdmins")
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, s)
	return nil
}

var errBoom = errors.New("connection reset by peer")
