package entity

import "time"

// EventType enumerates the complete event catalog a transaction can walk
// through. It is also the bus routing key.
type EventType string

const (
	EventBookingInitiated        EventType = "booking.initiated"
	EventBookingValidated        EventType = "booking.validated"
	EventBookingValidationFailed EventType = "booking.validation.failed"
	EventBookingPriced           EventType = "booking.priced"
	EventBookingPricingFailed    EventType = "booking.pricing.failed"
	EventBookingQuotaAcquired    EventType = "booking.quota.acquired"
	EventBookingQuotaSkipped     EventType = "booking.quota.skipped"
	EventBookingQuotaFailed      EventType = "booking.quota.failed"
	EventBookingQuotaReleased    EventType = "booking.quota.released"
	EventBookingCompensate       EventType = "booking.compensate"
	EventBookingCompleted        EventType = "booking.completed"
	EventBookingFailed           EventType = "booking.failed"
)

// Terminal reports whether an event type ends a transaction's saga walk.
func (t EventType) Terminal() bool {
	switch t {
	case EventBookingCompleted, EventBookingFailed, EventBookingQuotaReleased:
		return true
	default:
		return false
	}
}

// Event is the envelope carried on the bus: {event_type, transaction_id,
// timestamp, ...payload}. Data is free-form per event type; handlers
// type-assert the fields they need out of Data.
type Event struct {
	Type          EventType `json:"event_type"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	Data          JSON      `json:"data,omitempty"`
	Errors        []string  `json:"errors,omitempty"`
	Error         string    `json:"error,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
}

// BookingRequestPayload is the shape carried by booking.initiated and
// echoed, enriched, by booking.validated / booking.priced.
type BookingRequestPayload struct {
	UserName   string `json:"user_name"`
	UserGender string `json:"user_gender"`
	UserDOB    string `json:"user_dob"` // YYYY-MM-DD
	ServiceIDs []int  `json:"service_ids"`

	BasePrice          string `json:"base_price,omitempty"`
	FinalPrice         string `json:"final_price,omitempty"`
	DiscountEligible   bool   `json:"discount_eligible,omitempty"`
	DiscountPercentage string `json:"discount_percentage,omitempty"`
	DiscountReason     string `json:"discount_reason,omitempty"`
}

// ToJSON converts the payload into the generic JSON envelope carried by Event.Data.
func (p BookingRequestPayload) ToJSON() JSON {
	out := JSON{
		"user_name":   p.UserName,
		"user_gender": p.UserGender,
		"user_dob":    p.UserDOB,
		"service_ids": toAnySlice(p.ServiceIDs),
	}
	if p.BasePrice != "" {
		out["base_price"] = p.BasePrice
		out["final_price"] = p.FinalPrice
		out["discount_eligible"] = p.DiscountEligible
		out["discount_percentage"] = p.DiscountPercentage
		out["discount_reason"] = p.DiscountReason
	}
	return out
}

func toAnySlice(ids []int) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// PayloadFromJSON reconstructs a BookingRequestPayload from an Event's Data
// field. Unknown/missing fields are left at zero value — handlers down the
// chain only read what they need.
func PayloadFromJSON(data JSON) BookingRequestPayload {
	p := BookingRequestPayload{}
	if v, ok := data["user_name"].(string); ok {
		p.UserName = v
	}
	if v, ok := data["user_gender"].(string); ok {
		p.UserGender = v
	}
	if v, ok := data["user_dob"].(string); ok {
		p.UserDOB = v
	}
	if raw, ok := data["service_ids"].([]interface{}); ok {
		ids := make([]int, 0, len(raw))
		for _, v := range raw {
			switch n := v.(type) {
			case float64:
				ids = append(ids, int(n))
			case int:
				ids = append(ids, n)
			}
		}
		p.ServiceIDs = ids
	}
	if v, ok := data["base_price"].(string); ok {
		p.BasePrice = v
	}
	if v, ok := data["final_price"].(string); ok {
		p.FinalPrice = v
	}
	if v, ok := data["discount_eligible"].(bool); ok {
		p.DiscountEligible = v
	}
	if v, ok := data["discount_percentage"].(string); ok {
		p.DiscountPercentage = v
	}
	if v, ok := data["discount_reason"].(string); ok {
		p.DiscountReason = v
	}
	return p
}
