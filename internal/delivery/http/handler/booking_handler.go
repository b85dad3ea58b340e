package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-booking-saga/internal/delivery/dto"
	"clinic-booking-saga/internal/gateway"
	"clinic-booking-saga/pkg/response"
	"clinic-booking-saga/pkg/validator"

	"github.com/gorilla/mux"
)

// BookingHandler exposes the Gateway component's three operations over
// HTTP.
type BookingHandler struct {
	gateway   *gateway.Service
	validator *validator.CustomValidator
}

func NewBookingHandler(gatewaySvc *gateway.Service, v *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{gateway: gatewaySvc, validator: v}
}

// Create handles POST /api/v1/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	accepted, err := h.gateway.CreateBooking(r.Context(), gateway.BookingRequest{
		UserName:   req.UserName,
		UserGender: req.UserGender,
		UserDOB:    req.UserDOB,
		ServiceIDs: req.ServiceIDs,
	})
	if err != nil {
		response.InternalServerError(w, "Failed to submit booking request")
		return
	}

	response.Success(w, http.StatusAccepted, "Booking request accepted", dto.CreateBookingResponse{
		TransactionID: accepted.TransactionID,
		Status:        accepted.Status,
	})
}

// Status handles GET /api/v1/bookings/{transaction_id}/status.
func (h *BookingHandler) Status(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["transaction_id"]

	view, err := h.gateway.GetStatus(r.Context(), transactionID)
	if err != nil {
		response.InternalServerError(w, "Failed to load booking status")
		return
	}
	if view == nil {
		response.NotFound(w, "Transaction not found")
		return
	}

	events := make([]dto.EventView, len(view.Events))
	for i, e := range view.Events {
		events[i] = dto.EventView{
			EventType: string(e.EventType),
			EventData: e.EventData,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		}
	}

	response.Success(w, http.StatusOK, "Booking status retrieved", dto.BookingStatusResponse{
		TransactionID: view.TransactionID,
		CurrentState:  view.CurrentState,
		Events:        events,
	})
}

// ListServices handles GET /api/v1/services.
func (h *BookingHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	gender := r.URL.Query().Get("gender")

	services, err := h.gateway.ListServices(r.Context(), gender)
	if err != nil {
		response.InternalServerError(w, "Failed to list services")
		return
	}

	out := make([]dto.ServiceResponse, len(services))
	for i, s := range services {
		out[i] = dto.ServiceResponse{
			ID:        s.ID,
			Name:      s.Name,
			Gender:    string(s.Gender),
			BasePrice: s.BasePrice.StringFixed(2),
		}
	}

	response.Success(w, http.StatusOK, "Services retrieved", dto.ServiceListResponse{Services: out})
}
