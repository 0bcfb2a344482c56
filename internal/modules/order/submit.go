// README: Submitter commits a draft as an ordered sequence of writes (no rollback).
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/metrics"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/catalog"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var (
	ErrNoDraft    = errors.New("No draft order ID found")
	ErrIncomplete = errors.New("order is incomplete")
)

// Submission steps, in execution order.
const (
	StepPrice         = "price"
	StepOrder         = "order"
	StepLineItems     = "line_items"
	StepUpgrades      = "upgrades"
	StepAddress       = "address"
	StepNotifications = "notifications"
)

// StepError carries the failing step. Its message is the underlying error's, unchanged.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

type SubmissionStore interface {
	MarkSubmitted(ctx context.Context, rec SubmittedRecord) error
	InsertLineItem(ctx context.Context, item LineItem) error
	InsertUpgrade(ctx context.Context, u Upgrade) error
	InsertAddress(ctx context.Context, orderID types.ID, addressType string, a Address) error
}

type Catalog interface {
	LookupPackage(ctx context.Context, category, name, unit string) (*catalog.Product, error)
	LookupAddOn(ctx context.Context, category, name string) (*catalog.AddOn, error)
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, s Submitted) error
}

type Submitter struct {
	store    SubmissionStore
	catalog  Catalog
	notifier Notifier
	pricing  *pricing.Service
	now      func() time.Time
}

func NewSubmitter(store SubmissionStore, cat Catalog, notifier Notifier, p *pricing.Service) *Submitter {
	return &Submitter{store: store, catalog: cat, notifier: notifier, pricing: p, now: time.Now}
}

type SubmitCommand struct {
	UserID types.ID
	Draft  Draft
}

type SubmitResult struct {
	OrderID   types.ID
	Total     decimal.Decimal
	Completed []string
}

// submission is the state threaded through the steps.
type submission struct {
	cmd       SubmitCommand
	orderID   types.ID
	breakdown pricing.Breakdown
}

type submitStep struct {
	name string
	run  func(ctx context.Context, sub *submission) error
}

// Submit runs the steps strictly in order. The first failure aborts the rest; rows written by
// earlier steps are left in place and Completed lists them.
func (s *Submitter) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	if cmd.Draft.DraftOrderID == nil {
		return SubmitResult{}, ErrNoDraft
	}
	if errs := ValidateOrder(cmd.Draft); len(errs) > 0 {
		return SubmitResult{}, fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(errs, "; "))
	}

	sub := &submission{cmd: cmd, orderID: *cmd.Draft.DraftOrderID}
	logger := zerolog.Ctx(ctx).With().
		Str("order_id", sub.orderID.String()).
		Str("category", string(cmd.Draft.Category)).
		Logger()
	ctx = logger.WithContext(ctx)

	tracer := otel.Tracer("spaceseller/order")
	ctx, span := tracer.Start(ctx, "order.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", sub.orderID.String()))

	steps := []submitStep{
		{StepPrice, s.price},
		{StepOrder, s.markSubmitted},
		{StepLineItems, s.insertLineItems},
		{StepUpgrades, s.insertUpgrades},
		{StepAddress, s.insertAddress},
		{StepNotifications, s.notify},
	}
	res := SubmitResult{OrderID: sub.orderID}
	for _, step := range steps {
		stepCtx, stepSpan := tracer.Start(ctx, "saga."+step.name)
		err := step.run(stepCtx, sub)
		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()
			span.SetStatus(codes.Error, "step "+step.name+" failed")
			metrics.SubmissionStepFailures.WithLabelValues(step.name).Inc()
			metrics.Submissions.WithLabelValues("failed", string(cmd.Draft.Category)).Inc()
			logger.Error().Err(err).Str("step", step.name).Strs("completed", res.Completed).Msg("order submission aborted")
			return res, &StepError{Step: step.name, Err: err}
		}
		stepSpan.End()
		res.Completed = append(res.Completed, step.name)
	}
	res.Total = sub.breakdown.Total
	metrics.Submissions.WithLabelValues("submitted", string(cmd.Draft.Category)).Inc()
	logger.Info().Str("total", res.Total.String()).Msg("order submitted")
	return res, nil
}

// price never trusts a cached total.
func (s *Submitter) price(_ context.Context, sub *submission) error {
	b, ok := sub.cmd.Draft.Quote(s.pricing)
	if !ok {
		return ErrIncomplete
	}
	sub.breakdown = b
	return nil
}

func (s *Submitter) markSubmitted(ctx context.Context, sub *submission) error {
	d := sub.cmd.Draft
	return s.store.MarkSubmitted(ctx, SubmittedRecord{
		OrderID:             sub.orderID,
		Total:               sub.breakdown.Total,
		RequestedAt:         d.RequestedAt,
		AlternativeAt:       d.AlternativeAt,
		SpecialInstructions: d.SpecialInstructions,
	})
}

type packageMetadata struct {
	PackageID  string `json:"package_id"`
	Type       string `json:"type"`
	PhotoCount int    `json:"photo_count"`
	Tier       string `json:"tier"`
}

func (s *Submitter) insertLineItems(ctx context.Context, sub *submission) error {
	if p, ok := sub.cmd.Draft.Selection.(pricing.Photography); ok {
		return s.insertPackageItem(ctx, sub, p)
	}
	for _, it := range sub.breakdown.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		if err := s.store.InsertLineItem(ctx, LineItem{
			OrderID:    sub.orderID,
			ServiceID:  it.ID,
			Quantity:   qty,
			UnitPrice:  it.Price,
			TotalPrice: it.LineTotal(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// insertPackageItem writes the single package row. A package the catalog does not know is still
// recorded, with no product reference.
func (s *Submitter) insertPackageItem(ctx context.Context, sub *submission, p pricing.Photography) error {
	pkg := p.Package
	var line pricing.Item
	for _, it := range sub.breakdown.Items {
		if it.ID == pkg.ID {
			line = it
			break
		}
	}
	var productID *types.ID
	product, err := s.catalog.LookupPackage(ctx, string(pricing.CategoryPhotography), pkg.Name, pkg.Unit)
	switch {
	case err == nil:
		productID = &product.ID
	case errors.Is(err, catalog.ErrNotFound):
		zerolog.Ctx(ctx).Warn().Str("package", pkg.Name).Str("unit", pkg.Unit).Msg("package not in catalog, recording without product")
	default:
		return fmt.Errorf("lookup package %s: %w", pkg.Name, err)
	}
	meta, err := json.Marshal(packageMetadata{
		PackageID:  pkg.ID,
		Type:       pkg.Type,
		PhotoCount: pkg.PhotoCount,
		Tier:       pkg.Tier,
	})
	if err != nil {
		return err
	}
	qty := line.Quantity
	if qty <= 0 {
		qty = 1
	}
	return s.store.InsertLineItem(ctx, LineItem{
		OrderID:    sub.orderID,
		ProductID:  productID,
		ServiceID:  pkg.ID,
		Quantity:   qty,
		UnitPrice:  line.Price,
		TotalPrice: line.LineTotal(),
		Metadata:   meta,
	})
}

// insertUpgrades skips add-ons the catalog cannot resolve. They are logged and counted.
func (s *Submitter) insertUpgrades(ctx context.Context, sub *submission) error {
	p, ok := sub.cmd.Draft.Selection.(pricing.Photography)
	if !ok || len(p.AddOns) == 0 {
		return nil
	}
	for _, a := range p.AddOns {
		resolved, err := s.catalog.LookupAddOn(ctx, string(pricing.CategoryPhotography), a.Name)
		if errors.Is(err, catalog.ErrNotFound) {
			metrics.AddOnCatalogMisses.Inc()
			zerolog.Ctx(ctx).Warn().Str("add_on", a.Name).Msg("add-on not in catalog, skipped")
			continue
		}
		if err != nil {
			return fmt.Errorf("lookup add-on %s: %w", a.Name, err)
		}
		if err := s.store.InsertUpgrade(ctx, Upgrade{
			OrderID: sub.orderID,
			AddOnID: resolved.ID,
			Name:    a.Name,
			Price:   a.Price,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Submitter) insertAddress(ctx context.Context, sub *submission) error {
	return s.store.InsertAddress(ctx, sub.orderID, AddressTypeShooting, sub.cmd.Draft.Address)
}

func (s *Submitter) notify(ctx context.Context, sub *submission) error {
	d := sub.cmd.Draft
	return s.notifier.NotifyAdmins(ctx, Submitted{
		OrderID:     sub.orderID,
		OrderNumber: d.OrderNumber,
		UserID:      sub.cmd.UserID,
		Category:    d.Category,
		Total:       sub.breakdown.Total,
		SubmittedAt: s.now(),
	})
}
