// README: Wizard manager owns in-memory sessions, each with its draft and autosave task.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/matching"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type DraftCreator interface {
	CreateDraft(ctx context.Context, cmd order.CreateDraftCommand) (order.CreatedDraft, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Eligibility interface {
	FindEligibleProviders(ctx context.Context, loc types.Point, maxRadiusKm float64) (matching.Eligibility, error)
}

type Submitter interface {
	Submit(ctx context.Context, cmd order.SubmitCommand) (order.SubmitResult, error)
}

type Options struct {
	AutosaveEnabled bool
	Autosave        order.AutosaveOptions
	MaxRadiusKm     float64
}

type Deps struct {
	Drafts      DraftCreator
	DraftWriter order.DraftWriter
	Geocoder    Geocoder // optional
	Eligibility Eligibility
	Submitter   Submitter
	Pricing     *pricing.Service
}

type Manager struct {
	deps Deps
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{deps: deps, opts: opts, sessions: make(map[string]*Session)}
}

// Session is single-writer: every draft mutation holds mu.
type Session struct {
	ID     string
	UserID types.ID

	mu         sync.Mutex
	draft      order.Draft
	submitting bool
	// closed is set once the session left the manager; autosave must not start again
	closed     bool
	autosaver  *order.Autosaver
}

func (s *Session) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) snapshot() order.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Start creates the persisted draft shell right away and starts autosave for it.
func (m *Manager) Start(ctx context.Context, userID types.ID) (View, error) {
	created, err := m.deps.Drafts.CreateDraft(ctx, order.CreateDraftCommand{UserID: userID})
	if err != nil {
		return View{}, err
	}
	draft := order.NewDraft()
	draft.DraftOrderID = &created.ID
	draft.OrderNumber = created.OrderNumber

	s := &Session{ID: uuid.NewString(), UserID: userID, draft: draft}
	s.autosaver = order.NewAutosaver(m.deps.DraftWriter, m.deps.Pricing, s.snapshot, m.opts.Autosave)
	if m.opts.AutosaveEnabled {
		s.autosaver.Start(ctx)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("session_id", s.ID).Str("order_id", created.ID.String()).Msg("wizard session started")
	return m.view(s), nil
}

func (m *Manager) session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// mutate applies fn under the session lock and returns the resulting view.
func (m *Manager) mutate(id string, fn func(s *Session) error) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	err = fn(s)
	s.mu.Unlock()
	if err != nil {
		return View{}, err
	}
	return m.view(s), nil
}

// Authorize reports ErrSessionNotFound for sessions the user does not own.
func (m *Manager) Authorize(id string, userID types.ID) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}
	if s.UserID != userID {
		return ErrSessionNotFound
	}
	return nil
}

func (m *Manager) Get(id string) (View, error) {
	return m.mutate(id, func(*Session) error { return nil })
}

func (m *Manager) UpdateAddress(id string, a order.Address) (View, error) {
	return m.mutate(id, func(s *Session) error {
		s.draft.SetAddress(a)
		return nil
	})
}

// ValidateLocation geocodes the current address (or uses hint when no geocoder is configured)
// and asks the eligibility service for providers in range. The location is only marked valid
// if the address did not change in the meantime.
func (m *Manager) ValidateLocation(ctx context.Context, id string, hint *types.Point) (View, matching.Eligibility, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, matching.Eligibility{}, err
	}
	addr := s.snapshot().Address
	if !addr.Complete() {
		return View{}, matching.Eligibility{}, ErrIncompleteAddress
	}

	var loc types.Point
	switch {
	case m.deps.Geocoder != nil:
		if loc, err = m.deps.Geocoder.Geocode(ctx, addr.String()); err != nil {
			return View{}, matching.Eligibility{}, fmt.Errorf("geocode address: %w", err)
		}
	case hint != nil:
		loc = *hint
	default:
		return View{}, matching.Eligibility{}, ErrGeocoderUnavailable
	}

	elig, err := m.deps.Eligibility.FindEligibleProviders(ctx, loc, m.opts.MaxRadiusKm)
	if err != nil {
		return View{}, matching.Eligibility{}, fmt.Errorf("find eligible providers: %w", err)
	}

	v, err := m.mutate(id, func(s *Session) error {
		if s.draft.Address != addr {
			return ErrAddressChanged
		}
		if !elig.Available {
			s.draft.ClearLocation()
			return nil
		}
		s.draft.ApplyEligibility(elig.NearestDistanceKm, elig.TravelCost)
		return nil
	})
	if err != nil {
		return View{}, elig, err
	}
	if !elig.Available {
		return v, elig, ErrLocationUnavailable
	}
	return v, elig, nil
}

// SelectCategory drops a selection that belongs to another category.
func (m *Manager) SelectCategory(id string, c pricing.Category) (View, error) {
	return m.mutate(id, func(s *Session) error {
		s.draft.Category = c
		if s.draft.Selection != nil && s.draft.Selection.Category() != c {
			s.draft.Selection = nil
		}
		return nil
	})
}

func (m *Manager) Configure(id string, sel pricing.Selection) (View, error) {
	return m.mutate(id, func(s *Session) error {
		if s.draft.Category == "" {
			return ErrNoCategory
		}
		if sel == nil || sel.Category() != s.draft.Category {
			return ErrCategoryMismatch
		}
		s.draft.Selection = sel
		return nil
	})
}

// ConfigureByID resolves req against the static catalogs for the session's category.
func (m *Manager) ConfigureByID(id string, req ConfigureRequest) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	sel, err := ResolveSelection(s.snapshot().Category, req)
	if err != nil {
		return View{}, err
	}
	return m.Configure(id, sel)
}

func (m *Manager) SetSchedule(id string, cmd ScheduleCommand) (View, error) {
	return m.mutate(id, func(s *Session) error {
		s.draft.RequestedAt = cmd.RequestedAt
		s.draft.AlternativeAt = cmd.AlternativeAt
		s.draft.SpecialInstructions = cmd.SpecialInstructions
		return nil
	})
}

func (m *Manager) Advance(id string) (View, error) {
	return m.mutate(id, func(s *Session) error {
		step := s.draft.Step
		if !order.CanAdvanceFrom(step, s.draft) {
			return &StepBlockedError{Step: step, Errors: order.StepErrors(step, s.draft)}
		}
		s.draft.Step = step + 1
		return nil
	})
}

func (m *Manager) Back(id string) (View, error) {
	return m.mutate(id, func(s *Session) error {
		if s.draft.Step > order.StepLocation {
			s.draft.Step--
		}
		return nil
	})
}

func (m *Manager) Validation(id string) ([]string, bool, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, false, err
	}
	d := s.snapshot()
	errs := order.ValidateOrder(d)
	return errs, len(errs) == 0, nil
}

func (m *Manager) Quote(id string) (pricing.Breakdown, error) {
	s, err := m.session(id)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	d := s.snapshot()
	b, ok := d.Quote(m.deps.Pricing)
	if !ok {
		return pricing.Breakdown{}, ErrNoSelection
	}
	return b, nil
}

// Submit refuses a second call while one is running. Autosave is paused for the duration so
// it cannot write to the row being submitted, and resumes if the submission fails.
func (m *Manager) Submit(ctx context.Context, id string) (order.SubmitResult, error) {
	s, err := m.session(id)
	if err != nil {
		return order.SubmitResult{}, err
	}
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return order.SubmitResult{}, ErrSubmitInFlight
	}
	s.submitting = true
	draft := s.draft
	s.mu.Unlock()

	wasRunning := s.autosaver.Running()
	s.autosaver.Stop()

	res, err := m.deps.Submitter.Submit(ctx, order.SubmitCommand{UserID: s.UserID, Draft: draft})
	if err != nil {
		var stepErr *order.StepError
		// once the order row left draft there is nothing left to autosave
		committed := errors.As(err, &stepErr) && stepErr.Step != order.StepPrice && stepErr.Step != order.StepOrder
		s.mu.Lock()
		s.submitting = false
		if wasRunning && !committed && !s.closed {
			s.autosaver.Start(ctx)
		}
		s.mu.Unlock()
		return res, err
	}
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
	m.remove(id)
	return res, nil
}

// Close ends a session. The persisted draft row stays behind.
func (m *Manager) Close(id string) error {
	s := m.remove(id)
	if s == nil {
		return ErrSessionNotFound
	}
	s.autosaver.Stop()
	return nil
}

// Shutdown stops every session's autosave task.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.markClosed()
		s.autosaver.Stop()
	}
}

func (m *Manager) remove(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	delete(m.sessions, id)
	s.markClosed()
	return s
}

func (m *Manager) view(s *Session) View {
	d := s.snapshot()
	return View{
		ID:                  s.ID,
		UserID:              s.UserID,
		DraftOrderID:        d.DraftOrderID,
		OrderNumber:         d.OrderNumber,
		Step:                d.Step,
		Category:            d.Category,
		Address:             d.Address,
		LocationValidated:   d.LocationValidated(),
		DistanceKm:          d.DistanceKm(),
		TravelCost:          d.TravelCost(),
		Selection:           d.Selection,
		RequestedAt:         d.RequestedAt,
		AlternativeAt:       d.AlternativeAt,
		SpecialInstructions: d.SpecialInstructions,
		CanAdvance:          order.CanAdvanceFrom(d.Step, d),
		CanSubmit:           order.CanSubmit(d),
		AutosaveRunning:     s.autosaver.Running(),
	}
}
