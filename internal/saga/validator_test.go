package saga_test

import (
	"context"
	"testing"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/saga"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	byID map[int]entity.Service
}

func newFakeCatalog(services ...entity.Service) *fakeCatalog {
	c := &fakeCatalog{byID: make(map[int]entity.Service)}
	for _, s := range services {
		c.byID[s.ID] = s
	}
	return c
}

func (c *fakeCatalog) FindByID(ctx context.Context, id int) (*entity.Service, error) {
	svc, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (c *fakeCatalog) FindByIDs(ctx context.Context, ids []int) ([]entity.Service, error) {
	out := make([]entity.Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := c.byID[id]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (c *fakeCatalog) List(ctx context.Context, gender string) ([]entity.Service, error) {
	var out []entity.Service
	for _, s := range c.byID {
		if gender == "" || s.Gender == entity.ServiceGenderBoth || string(s.Gender) == gender {
			out = append(out, s)
		}
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return newFakeCatalog(
		entity.Service{ID: 1, Name: "General Consultation", Gender: entity.ServiceGenderBoth, BasePrice: decimalFromString("300.00")},
		entity.Service{ID: 2, Name: "Gynecology", Gender: entity.ServiceGenderFemale, BasePrice: decimalFromString("500.00")},
		entity.Service{ID: 4, Name: "Blood Test", Gender: entity.ServiceGenderBoth, BasePrice: decimalFromString("450.00")},
		entity.Service{ID: 5, Name: "Cardiology", Gender: entity.ServiceGenderBoth, BasePrice: decimalFromString("600.00")},
		entity.Service{ID: 6, Name: "Urology", Gender: entity.ServiceGenderMale, BasePrice: decimalFromString("550.00")},
	)
}

func initiatedEvent(txID string, payload entity.BookingRequestPayload) entity.Event {
	return entity.Event{
		Type:          entity.EventBookingInitiated,
		TransactionID: txID,
		Data:          payload.ToJSON(),
	}
}

func TestValidator_MissingUserName(t *testing.T) {
	v := saga.NewValidator(testCatalog())

	out, err := v.Handle(context.Background(), initiatedEvent("tx1", entity.BookingRequestPayload{
		UserGender: "male",
		ServiceIDs: []int{1},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidationFailed, out.Type)
	require.Contains(t, out.Errors, "user_name is required")
}

func TestValidator_InvalidGender(t *testing.T) {
	v := saga.NewValidator(testCatalog())

	out, err := v.Handle(context.Background(), initiatedEvent("tx1", entity.BookingRequestPayload{
		UserName:   "Asha",
		UserGender: "unspecified",
		ServiceIDs: []int{1},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidationFailed, out.Type)
	require.Contains(t, out.Errors, "user_gender must be male or female")
}

// A male user booking a female-only service fails validation naming the service.
func TestValidator_GenderIncompatibleService(t *testing.T) {
	v := saga.NewValidator(testCatalog())

	out, err := v.Handle(context.Background(), initiatedEvent("tx1", entity.BookingRequestPayload{
		UserName:   "Rahul",
		UserGender: "male",
		ServiceIDs: []int{2},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidationFailed, out.Type)
	require.Len(t, out.Errors, 1)
	require.Contains(t, out.Errors[0], "Gynecology")
}

func TestValidator_UnknownServiceIDSilentlyDropped(t *testing.T) {
	v := saga.NewValidator(testCatalog())

	out, err := v.Handle(context.Background(), initiatedEvent("tx1", entity.BookingRequestPayload{
		UserName:   "Priya",
		UserGender: "female",
		ServiceIDs: []int{999},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidated, out.Type)
}

func TestValidator_Success(t *testing.T) {
	v := saga.NewValidator(testCatalog())

	out, err := v.Handle(context.Background(), initiatedEvent("tx1", entity.BookingRequestPayload{
		UserName:   "Priya",
		UserGender: "female",
		ServiceIDs: []int{1, 4},
	}))

	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidated, out.Type)
	require.Empty(t, out.Errors)
}
