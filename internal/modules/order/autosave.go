// README: Autosaver persists a draft periodically, writing only when it changed.
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/metrics"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type DraftWriter interface {
	UpdateDraftTotal(ctx context.Context, id types.ID, total decimal.Decimal) error
	UpsertDraftAddress(ctx context.Context, orderID types.ID, a Address) error
}

type AutosaveOptions struct {
	InitialDelay time.Duration
	Interval     time.Duration
}

// Autosaver belongs to one session. source must return a copy of the current draft.
type Autosaver struct {
	writer  DraftWriter
	pricing *pricing.Service
	source  func() Draft
	opts    AutosaveOptions

	inFlight atomic.Bool
	last     []byte // guarded by inFlight

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAutosaver(writer DraftWriter, p *pricing.Service, source func() Draft, opts AutosaveOptions) *Autosaver {
	return &Autosaver{writer: writer, pricing: p, source: source, opts: opts}
}

// Start launches the save loop: one save after InitialDelay, then every Interval. The loop
// outlives the caller's request but not Stop.
func (a *Autosaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, a.done)
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *Autosaver) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *Autosaver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(a.opts.InitialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		a.Save(ctx)
	}

	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Save(ctx)
		}
	}
}

// Save writes the draft if its snapshot differs from the last successful save. A call made
// while another save is running is dropped. Write errors are logged and leave the draft dirty,
// so the next tick retries.
func (a *Autosaver) Save(ctx context.Context) string {
	d := a.source()
	if d.DraftOrderID == nil {
		return metrics.AutosaveUnchanged
	}
	if !a.inFlight.CompareAndSwap(false, true) {
		metrics.AutosaveAttempts.WithLabelValues(metrics.AutosaveDropped).Inc()
		return metrics.AutosaveDropped
	}
	defer a.inFlight.Store(false)

	result := a.save(ctx, d)
	metrics.AutosaveAttempts.WithLabelValues(result).Inc()
	return result
}

func (a *Autosaver) save(ctx context.Context, d Draft) string {
	logger := zerolog.Ctx(ctx).With().Str("order_id", d.DraftOrderID.String()).Logger()

	snap, err := Snapshot(d)
	if err != nil {
		logger.Warn().Err(err).Msg("autosave snapshot failed")
		return metrics.AutosaveFailed
	}
	if a.last != nil && bytes.Equal(snap, a.last) {
		return metrics.AutosaveUnchanged
	}

	ctx, span := otel.Tracer("spaceseller/order").Start(ctx, "order.Autosave")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", d.DraftOrderID.String()))

	total := decimal.Zero
	if b, ok := d.Quote(a.pricing); ok {
		total = b.Total
	}
	if err := a.writer.UpdateDraftTotal(ctx, *d.DraftOrderID, total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Msg("autosave total update failed")
		return metrics.AutosaveFailed
	}
	if !blank(d.Address.Street) && !blank(d.Address.PostalCode) {
		if err := a.writer.UpsertDraftAddress(ctx, *d.DraftOrderID, d.Address); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn().Err(err).Msg("autosave address upsert failed")
			return metrics.AutosaveFailed
		}
	}
	a.last = snap
	logger.Debug().Str("total", total.String()).Msg("draft autosaved")
	return metrics.AutosaveWritten
}

type snapshot struct {
	Category  pricing.Category  `json:"category"`
	Selection pricing.Selection `json:"selection"`
	Address   Address           `json:"address"`
	Step      Step              `json:"step"`
}

// Snapshot is the canonical serialization used for change detection.
func Snapshot(d Draft) ([]byte, error) {
	return json.Marshal(snapshot{
		Category:  d.Category,
		Selection: d.Selection,
		Address:   d.Address,
		Step:      d.Step,
	})
}
