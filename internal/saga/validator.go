package saga

import (
	"context"
	"fmt"
	"time"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/domain/repository"
)

// Validator checks request shape and service/gender compatibility.
// It is a pure function of its inputs plus one catalog
// lookup — no state of its own, so it is directly unit-testable without
// any bus.
type Validator struct {
	catalog repository.CatalogRepository
}

func NewValidator(catalog repository.CatalogRepository) *Validator {
	return &Validator{catalog: catalog}
}

// Handle consumes booking.initiated and produces exactly one of
// booking.validated / booking.validation.failed.
func (v *Validator) Handle(ctx context.Context, evt entity.Event) (entity.Event, error) {
	payload := entity.PayloadFromJSON(evt.Data)

	var errs []string
	if payload.UserName == "" {
		errs = append(errs, "user_name is required")
	}
	if payload.UserGender != string(entity.ServiceGenderMale) && payload.UserGender != string(entity.ServiceGenderFemale) {
		errs = append(errs, "user_gender must be male or female")
	}

	for _, id := range payload.ServiceIDs {
		svc, err := v.catalog.FindByID(ctx, id)
		if err != nil {
			return entity.Event{}, fmt.Errorf("resolve service %d: %w", id, err)
		}
		if svc == nil {
			// Unknown service ids are silently dropped from the gender
			// check; the pricer also leaves them out of the base price, so
			// no error is raised for them anywhere in the saga.
			continue
		}
		if !svc.Gender.Compatible(payload.UserGender) {
			errs = append(errs, fmt.Sprintf("%s is not available for your gender", svc.Name))
		}
	}

	now := time.Now().UTC()
	if len(errs) > 0 {
		return entity.Event{
			Type:          entity.EventBookingValidationFailed,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			Errors:        errs,
		}, nil
	}

	return entity.Event{
		Type:          entity.EventBookingValidated,
		TransactionID: evt.TransactionID,
		Timestamp:     now,
		Data:          payload.ToJSON(),
	}, nil
}
