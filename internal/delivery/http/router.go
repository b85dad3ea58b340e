package http

import (
	"net/http"

	"clinic-booking-saga/internal/delivery/http/handler"
	"clinic-booking-saga/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router         *mux.Router
	bookingHandler *handler.BookingHandler
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(bookingHandler *handler.BookingHandler, corsMiddleware *middleware.CORSMiddleware) *Router {
	return &Router{
		router:         mux.NewRouter(),
		bookingHandler: bookingHandler,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	api.HandleFunc("/bookings", r.bookingHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{transaction_id}/status", r.bookingHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/services", r.bookingHandler.ListServices).Methods(http.MethodGet)

	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
