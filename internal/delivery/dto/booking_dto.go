package dto

import (
	"clinic-booking-saga/internal/domain/entity"
)

// CreateBookingRequest is the body of POST /api/v1/bookings.
type CreateBookingRequest struct {
	UserName   string `json:"user_name" validate:"required"`
	UserGender string `json:"user_gender" validate:"required,oneof=male female"`
	UserDOB    string `json:"user_dob" validate:"required,datetime=2006-01-02"`
	ServiceIDs []int  `json:"service_ids" validate:"required,min=1"`
}

type CreateBookingResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type EventView struct {
	EventType string      `json:"event_type"`
	EventData entity.JSON `json:"event_data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type BookingStatusResponse struct {
	TransactionID string      `json:"transaction_id"`
	CurrentState  string      `json:"current_state"`
	Events        []EventView `json:"events"`
}

type ServiceResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	BasePrice string `json:"base_price"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}
