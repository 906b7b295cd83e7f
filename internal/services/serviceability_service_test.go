package services

import (
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServiceabilityFixture(t *testing.T) (ServiceabilityService, *memPincodeRepo) {
	t.Helper()
	pincodes := newMemPincodeRepo()
	require.NoError(t, pincodes.Create(&models.Pincode{
		Code: "400001", City: "Mumbai", State: "Maharashtra",
		IsServiceable: true, CODAvailable: true,
		StandardDays: 3, ExpressDays: 1, ExpressAvailable: true,
		DeliveryCharge: 40, FreeDeliveryThreshold: 500,
		Slots: []models.DeliverySlot{
			{Label: "Morning", StartHour: 9, EndHour: 12, CutoffHour: 10},
		},
	}))
	require.NoError(t, pincodes.Create(&models.Pincode{
		Code: "190001", IsServiceable: false,
	}))
	return NewServiceabilityService(pincodes, nil, time.Minute), pincodes
}

func TestCheck_UnknownPincode(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	result, err := svc.Check("999999", time.Now())
	require.NoError(t, err)
	assert.False(t, result.IsServiceable)
	assert.Empty(t, result.Slots)
}

func TestCheck_UnserviceablePincode(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	result, err := svc.Check("190001", time.Now())
	require.NoError(t, err)
	assert.False(t, result.IsServiceable)
}

func TestCheck_DeliveryDates(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	result, err := svc.Check("400001", now)
	require.NoError(t, err)

	assert.True(t, result.IsServiceable)
	assert.Equal(t, "Mumbai", result.City)
	assert.True(t, result.CODAvailable)
	assert.Equal(t, 40.0, result.DeliveryCharge)
	assert.Equal(t, 500.0, result.FreeDeliveryThreshold)
	assert.Equal(t, "2024-06-13", result.StandardDelivery)
	assert.Equal(t, "2024-06-11", result.ExpressDelivery)
}

func TestCheck_SlotBeforeCutoff(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	// 09:00 with a 10:00 cutoff: the nearest day still offers the slot, so
	// all three days of the window do.
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	result, err := svc.Check("400001", now)
	require.NoError(t, err)

	require.Len(t, result.Slots, 3)
	assert.Equal(t, "2024-06-13", result.Slots[0].Date)
	assert.Equal(t, "2024-06-14", result.Slots[1].Date)
	assert.Equal(t, "2024-06-15", result.Slots[2].Date)
}

func TestCheck_SlotAfterCutoff(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	// 11:00 with a 10:00 cutoff: the nearest day drops the slot; the two
	// further-out days keep it.
	now := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
	result, err := svc.Check("400001", now)
	require.NoError(t, err)

	require.Len(t, result.Slots, 2)
	assert.Equal(t, "2024-06-14", result.Slots[0].Date)
	assert.Equal(t, "2024-06-15", result.Slots[1].Date)
}

func TestCreatePincode(t *testing.T) {
	svc, pincodes := newServiceabilityFixture(t)

	err := svc.CreatePincode(adminActor(), &models.Pincode{
		Code: "560001", City: "Bengaluru", IsServiceable: true, StandardDays: 4,
	})
	require.NoError(t, err)

	created, err := pincodes.GetByCode("560001")
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", created.City)

	_, total, err := svc.ListPincodes(adminActor(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCreatePincode_MissingCode(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	err := svc.CreatePincode(adminActor(), &models.Pincode{City: "Nowhere"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPincodeAdmin_NonAdminForbidden(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)
	customer := models.Actor{UserID: 1, Role: models.RoleCustomer}

	err := svc.CreatePincode(customer, &models.Pincode{Code: "110001"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.ListPincodes(customer, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCheck_SlotLabel(t *testing.T) {
	svc, _ := newServiceabilityFixture(t)

	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	result, err := svc.Check("400001", now)
	require.NoError(t, err)

	require.NotEmpty(t, result.Slots)
	assert.Equal(t, "Thursday, Jun 13 Morning (09:00 - 12:00)", result.Slots[0].Label)
}
