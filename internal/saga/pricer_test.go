package saga_test

import (
	"context"
	"testing"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/saga"
	"clinic-booking-saga/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testPricer(t *testing.T) *saga.Pricer {
	t.Helper()
	fixedClock, err := clock.NewFixedClock(clock.DefaultTimezone)
	require.NoError(t, err)
	return saga.NewPricer(testCatalog(), fixedClock, decimalFromString("12"), decimalFromString("1000"))
}

func validatedEvent(txID string, payload entity.BookingRequestPayload) entity.Event {
	return entity.Event{
		Type:          entity.EventBookingValidated,
		TransactionID: txID,
		Data:          payload.ToJSON(),
	}
}

// female, dob=today, services=[1] (base 300) -> discount_eligible=true, final_price=264.00
func TestPricer_FemaleBirthdayDiscount(t *testing.T) {
	p := testPricer(t)
	fixedClock, err := clock.NewFixedClock(clock.DefaultTimezone)
	require.NoError(t, err)
	today := fixedClock.Now().Format("2006-01-02")

	out, err := p.Handle(context.Background(), validatedEvent("tx1", entity.BookingRequestPayload{
		UserName:   "Asha",
		UserGender: "female",
		UserDOB:    today,
		ServiceIDs: []int{1},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingPriced, out.Type)

	payload := entity.PayloadFromJSON(out.Data)
	require.True(t, payload.DiscountEligible)
	require.Equal(t, "Female birthday discount", payload.DiscountReason)
	require.Equal(t, "300", payload.BasePrice)
	require.Equal(t, "264", payload.FinalPrice)
}

// male, dob=2000-01-01, services=[1,4] (base 750) -> discount_eligible=false, final_price=750.00
func TestPricer_NoDiscount(t *testing.T) {
	p := testPricer(t)

	out, err := p.Handle(context.Background(), validatedEvent("tx2", entity.BookingRequestPayload{
		UserName:   "Rahul",
		UserGender: "male",
		UserDOB:    "2000-01-01",
		ServiceIDs: []int{1, 4},
	}))

	require.NoError(t, err)
	payload := entity.PayloadFromJSON(out.Data)
	require.False(t, payload.DiscountEligible)
	require.Equal(t, "750", payload.FinalPrice)
}

// male, services=[1,4,5,6] (base 1900) -> discount_eligible=true (high-value), final_price=1672.00
func TestPricer_HighValueDiscount(t *testing.T) {
	p := testPricer(t)

	out, err := p.Handle(context.Background(), validatedEvent("tx3", entity.BookingRequestPayload{
		UserName:   "Vikram",
		UserGender: "male",
		UserDOB:    "1990-05-05",
		ServiceIDs: []int{1, 4, 5, 6},
	}))

	require.NoError(t, err)
	payload := entity.PayloadFromJSON(out.Data)
	require.True(t, payload.DiscountEligible)
	require.Equal(t, "High-value order", payload.DiscountReason)
	require.Equal(t, "1900", payload.BasePrice)
	require.Equal(t, "1672", payload.FinalPrice)
}

func TestPricer_UnresolvedServiceIDsSkippedFromBase(t *testing.T) {
	p := testPricer(t)

	out, err := p.Handle(context.Background(), validatedEvent("tx4", entity.BookingRequestPayload{
		UserName:   "Meera",
		UserGender: "female",
		UserDOB:    "1995-03-03",
		ServiceIDs: []int{1, 999},
	}))

	require.NoError(t, err)
	payload := entity.PayloadFromJSON(out.Data)
	require.Equal(t, "300", payload.BasePrice)
}

func TestPricer_RoundsHalfUpToTwoDecimals(t *testing.T) {
	fixedClock, err := clock.NewFixedClock(clock.DefaultTimezone)
	require.NoError(t, err)
	catalog := newFakeCatalog(entity.Service{ID: 10, Name: "Odd Pricing", Gender: entity.ServiceGenderBoth, BasePrice: decimalFromString("1000.1875")})
	p := saga.NewPricer(catalog, fixedClock, decimal.NewFromInt(12), decimalFromString("1000"))

	out, err := p.Handle(context.Background(), validatedEvent("tx5", entity.BookingRequestPayload{
		UserName:   "Dev",
		UserGender: "male",
		UserDOB:    "1990-05-05",
		ServiceIDs: []int{10},
	}))

	require.NoError(t, err)
	payload := entity.PayloadFromJSON(out.Data)
	require.True(t, payload.DiscountEligible)
	// 1000.1875 * 0.88 = 880.165, an exact tie: half-up gives 880.17
	// (half-even would give 880.16)
	require.Equal(t, "880.17", payload.FinalPrice)
}
