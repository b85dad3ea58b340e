// Package gateway implements the booking gateway: the only component
// clients ever talk to directly. It mints transaction ids,
// publishes booking.initiated, and serves status/catalog reads from the
// stores the other components own.
package gateway

import (
	"context"
	"fmt"
	"time"

	"clinic-booking-saga/internal/bus"
	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/domain/repository"

	"github.com/google/uuid"
)

// BookingRequest is the shape accepted by create_booking.
type BookingRequest struct {
	UserName   string
	UserGender string
	UserDOB    string
	ServiceIDs []int
}

// BookingAccepted is the immediate response to create_booking — it never
// waits on downstream processing.
type BookingAccepted struct {
	TransactionID string
	Status        string
}

// StatusView is the response to get_status, read straight from the
// orchestrator's append-only log and current-state summary.
type StatusView struct {
	TransactionID string
	CurrentState  string
	Events        []entity.TransactionEvent
}

type Service struct {
	bus     bus.Bus
	events  repository.EventRepository
	state   repository.StateRepository
	catalog repository.CatalogRepository
}

func NewService(eventBus bus.Bus, events repository.EventRepository, state repository.StateRepository, catalog repository.CatalogRepository) *Service {
	return &Service{bus: eventBus, events: events, state: state, catalog: catalog}
}

// CreateBooking mints a transaction_id and emits booking.initiated.
// Bus-publish failure is fatal for the request: the caller must surface
// it as a 5xx.
func (s *Service) CreateBooking(ctx context.Context, req BookingRequest) (BookingAccepted, error) {
	transactionID := uuid.NewString()

	payload := entity.BookingRequestPayload{
		UserName:   req.UserName,
		UserGender: req.UserGender,
		UserDOB:    req.UserDOB,
		ServiceIDs: req.ServiceIDs,
	}

	evt := entity.Event{
		Type:          entity.EventBookingInitiated,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
		Data:          payload.ToJSON(),
	}

	if err := s.bus.Publish(ctx, evt); err != nil {
		return BookingAccepted{}, fmt.Errorf("publish booking.initiated: %w", err)
	}

	return BookingAccepted{TransactionID: transactionID, Status: "initiated"}, nil
}

// GetStatus reads the current_state and full event history for a
// transaction from the orchestrator's store. Unknown transaction ids
// yield (nil, nil) so the handler can translate that into a 404.
func (s *Service) GetStatus(ctx context.Context, transactionID string) (*StatusView, error) {
	state, err := s.state.Get(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		return nil, nil
	}

	events, err := s.events.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	return &StatusView{
		TransactionID: transactionID,
		CurrentState:  string(state.CurrentState),
		Events:        events,
	}, nil
}

// ListServices returns the catalog projection filtered by gender, where
// gender == "" means no filter.
func (s *Service) ListServices(ctx context.Context, gender string) ([]entity.Service, error) {
	return s.catalog.List(ctx, gender)
}
