package saga

import (
	"context"
	"fmt"
	"time"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/domain/repository"
	"clinic-booking-saga/pkg/clock"

	"github.com/shopspring/decimal"
)

// Pricer computes base_price and the single discount decision. Rounding
// mode: half-up (decimal.Round rounds half away from zero, which is
// half-up for the non-negative amounts this domain deals in).
type Pricer struct {
	catalog            repository.CatalogRepository
	clock              *clock.FixedClock
	discountPercent    decimal.Decimal
	highValueThreshold decimal.Decimal
}

func NewPricer(catalog repository.CatalogRepository, fixedClock *clock.FixedClock, discountPercent, highValueThreshold decimal.Decimal) *Pricer {
	return &Pricer{
		catalog:            catalog,
		clock:              fixedClock,
		discountPercent:    discountPercent,
		highValueThreshold: highValueThreshold,
	}
}

// Handle consumes booking.validated and produces exactly one of
// booking.priced / booking.pricing.failed.
func (p *Pricer) Handle(ctx context.Context, evt entity.Event) (entity.Event, error) {
	payload := entity.PayloadFromJSON(evt.Data)
	now := time.Now().UTC()

	services, err := p.catalog.FindByIDs(ctx, payload.ServiceIDs)
	if err != nil {
		return entity.Event{
			Type:          entity.EventBookingPricingFailed,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			Error:         fmt.Sprintf("resolve catalog: %v", err),
		}, nil
	}

	byID := make(map[int]entity.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	base := decimal.Zero
	for _, id := range payload.ServiceIDs {
		if svc, ok := byID[id]; ok {
			base = base.Add(svc.BasePrice)
		}
	}

	eligible, reason := p.evaluateDiscount(payload, base)

	pct := decimal.Zero
	final := base
	if eligible {
		pct = p.discountPercent
		multiplier := decimal.NewFromInt(100).Sub(pct).Div(decimal.NewFromInt(100))
		final = base.Mul(multiplier).Round(2)
	}

	payload.BasePrice = base.Round(2).String()
	payload.FinalPrice = final.String()
	payload.DiscountEligible = eligible
	payload.DiscountPercentage = pct.String()
	payload.DiscountReason = reason

	return entity.Event{
		Type:          entity.EventBookingPriced,
		TransactionID: evt.TransactionID,
		Timestamp:     now,
		Data:          payload.ToJSON(),
	}, nil
}

// evaluateDiscount applies the fixed rule set in order, first match wins:
// R1 female-birthday, then R2 high-value.
func (p *Pricer) evaluateDiscount(payload entity.BookingRequestPayload, base decimal.Decimal) (bool, string) {
	if payload.UserGender == string(entity.ServiceGenderFemale) {
		if dob, err := time.Parse("2006-01-02", payload.UserDOB); err == nil {
			today := p.clock.Now()
			if dob.Month() == today.Month() && dob.Day() == today.Day() {
				return true, "Female birthday discount"
			}
		}
	}
	if base.GreaterThan(p.highValueThreshold) {
		return true, "High-value order"
	}
	return false, ""
}
