package saga

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/domain/repository"
	"clinic-booking-saga/pkg/clock"
	"clinic-booking-saga/pkg/refid"

	"github.com/shopspring/decimal"
)

const maxReferenceIDAttempts = 5

// Orchestrator is the saga coordinator: it logs every event
// it sees for dedup/audit, keeps the per-transaction current-state
// summary current, and decides what happens next — finalize, compensate,
// or fail — based purely on the event log, never on in-memory state, so
// any instance can pick up a transaction after a crash.
type Orchestrator struct {
	events   repository.EventRepository
	state    repository.StateRepository
	bookings repository.BookingRepository
	clock    *clock.FixedClock
}

func NewOrchestrator(events repository.EventRepository, state repository.StateRepository, bookings repository.BookingRepository, fixedClock *clock.FixedClock) *Orchestrator {
	return &Orchestrator{events: events, state: state, bookings: bookings, clock: fixedClock}
}

// Handle logs evt and reacts to it, returning zero or more follow-up
// events the caller (the bus wiring) must publish. A duplicate delivery
// of an already-logged event is absorbed here and produces no output —
// the at-least-once delivery contract's idempotency boundary.
func (o *Orchestrator) Handle(ctx context.Context, evt entity.Event) ([]entity.Event, error) {
	inserted, err := o.logEvent(ctx, evt)
	if err != nil {
		return nil, fmt.Errorf("log event: %w", err)
	}
	if !inserted {
		return nil, nil
	}

	if err := o.state.Upsert(ctx, evt.TransactionID, evt.Type); err != nil {
		return nil, fmt.Errorf("upsert state: %w", err)
	}

	switch evt.Type {
	case entity.EventBookingQuotaAcquired, entity.EventBookingQuotaSkipped:
		out, err := o.finalize(ctx, evt)
		if err != nil {
			return nil, err
		}
		return []entity.Event{out}, nil

	case entity.EventBookingValidationFailed, entity.EventBookingPricingFailed, entity.EventBookingQuotaFailed:
		out, err := o.handleFailure(ctx, evt)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, nil
		}
		return []entity.Event{*out}, nil

	case entity.EventBookingQuotaReleased:
		out, err := o.finishCompensation(ctx, evt)
		if err != nil {
			return nil, err
		}
		return []entity.Event{out}, nil

	default:
		return nil, nil
	}
}

func (o *Orchestrator) logEvent(ctx context.Context, evt entity.Event) (bool, error) {
	data := evt.Data
	if data == nil {
		data = entity.JSON{}
	}
	if len(evt.Errors) > 0 {
		errs := make([]interface{}, len(evt.Errors))
		for i, e := range evt.Errors {
			errs[i] = e
		}
		data["errors"] = errs
	}
	if evt.Error != "" {
		data["error"] = evt.Error
	}
	if evt.Reason != "" {
		data["reason"] = evt.Reason
	}
	return o.events.Append(ctx, &entity.TransactionEvent{
		TransactionID: evt.TransactionID,
		EventType:     evt.Type,
		EventData:     data,
		Timestamp:     evt.Timestamp,
	})
}

// finalize writes the Booking record exactly once per transaction and
// emits booking.completed.
func (o *Orchestrator) finalize(ctx context.Context, evt entity.Event) (entity.Event, error) {
	now := time.Now().UTC()

	if existing, err := o.bookings.FindByTransaction(ctx, evt.TransactionID); err != nil {
		return entity.Event{}, fmt.Errorf("lookup existing booking: %w", err)
	} else if existing != nil {
		return entity.Event{
			Type:          entity.EventBookingCompleted,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			ReferenceID:   existing.ReferenceID,
		}, nil
	}

	payload := entity.PayloadFromJSON(evt.Data)
	basePrice, _ := decimal.NewFromString(payload.BasePrice)
	finalPrice, _ := decimal.NewFromString(payload.FinalPrice)
	discountPct, _ := decimal.NewFromString(payload.DiscountPercentage)

	booking := &entity.Booking{
		TransactionID:      evt.TransactionID,
		UserName:           payload.UserName,
		UserGender:         payload.UserGender,
		UserDOB:            payload.UserDOB,
		ServiceIDs:         entity.IntSlice(payload.ServiceIDs),
		BasePrice:          basePrice,
		DiscountApplied:    payload.DiscountEligible,
		DiscountPercentage: discountPct,
		FinalPrice:         finalPrice,
	}

	var created bool
	for attempt := 0; attempt < maxReferenceIDAttempts; attempt++ {
		booking.ReferenceID = refid.New(o.clock.Now())
		// The unique constraint on reference_id still catches the race
		// where another finalize mints the same id between this read and
		// the insert below.
		if taken, err := o.bookings.ExistsReferenceID(ctx, booking.ReferenceID); err != nil {
			return entity.Event{}, fmt.Errorf("check reference id: %w", err)
		} else if taken {
			continue
		}
		ok, err := o.bookings.Create(ctx, booking)
		if err != nil {
			return entity.Event{}, fmt.Errorf("create booking: %w", err)
		}
		if ok {
			created = true
			break
		}
		// RowsAffected was 0: either this transaction_id raced us (another
		// delivery of the same completion won) or the reference_id
		// collided. Re-check by transaction_id before minting again.
		if existing, err := o.bookings.FindByTransaction(ctx, evt.TransactionID); err != nil {
			return entity.Event{}, fmt.Errorf("recheck existing booking: %w", err)
		} else if existing != nil {
			booking = existing
			created = true
			break
		}
	}
	if !created {
		return entity.Event{}, fmt.Errorf("create booking: exhausted reference id attempts")
	}

	return entity.Event{
		Type:          entity.EventBookingCompleted,
		TransactionID: evt.TransactionID,
		Timestamp:     now,
		ReferenceID:   booking.ReferenceID,
	}, nil
}

// handleFailure decides between emitting booking.compensate (when a
// quota slot was actually acquired and still needs releasing) or
// booking.failed directly. MarkCompensationEmitted guards at-most-once
// emission of booking.compensate per transaction.
func (o *Orchestrator) handleFailure(ctx context.Context, evt entity.Event) (*entity.Event, error) {
	acquired, err := o.events.HasType(ctx, evt.TransactionID, entity.EventBookingQuotaAcquired)
	if err != nil {
		return nil, fmt.Errorf("check quota acquired: %w", err)
	}
	released, err := o.events.HasType(ctx, evt.TransactionID, entity.EventBookingQuotaReleased)
	if err != nil {
		return nil, fmt.Errorf("check quota released: %w", err)
	}

	now := time.Now().UTC()
	if acquired && !released {
		flipped, err := o.state.MarkCompensationEmitted(ctx, evt.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("mark compensation emitted: %w", err)
		}
		if !flipped {
			return nil, nil
		}
		out := entity.Event{
			Type:          entity.EventBookingCompensate,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			Reason:        failureReason(evt),
		}
		return &out, nil
	}

	out := entity.Event{
		Type:          entity.EventBookingFailed,
		TransactionID: evt.TransactionID,
		Timestamp:     now,
		Error:         failureReason(evt),
	}
	return &out, nil
}

// finishCompensation runs after the quota slot has been released, always
// producing the terminal booking.failed for the compensating path.
func (o *Orchestrator) finishCompensation(ctx context.Context, evt entity.Event) (entity.Event, error) {
	history, err := o.events.ListByTransaction(ctx, evt.TransactionID)
	if err != nil {
		return entity.Event{}, fmt.Errorf("load history: %w", err)
	}

	reason := "booking failed"
	for _, e := range history {
		switch e.EventType {
		case entity.EventBookingValidationFailed, entity.EventBookingPricingFailed, entity.EventBookingQuotaFailed:
			if msg := errorFromEventData(e.EventData); msg != "" {
				reason = msg
			}
		}
	}

	return entity.Event{
		Type:          entity.EventBookingFailed,
		TransactionID: evt.TransactionID,
		Timestamp:     time.Now().UTC(),
		Error:         reason,
	}, nil
}

func failureReason(evt entity.Event) string {
	if evt.Error != "" {
		return evt.Error
	}
	if len(evt.Errors) > 0 {
		return strings.Join(evt.Errors, "; ")
	}
	return "booking failed"
}

func errorFromEventData(data entity.JSON) string {
	if data == nil {
		return ""
	}
	if v, ok := data["error"].(string); ok && v != "" {
		return v
	}
	if raw, ok := data["errors"].([]interface{}); ok && len(raw) > 0 {
		parts := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
