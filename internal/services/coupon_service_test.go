package services

import (
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCouponFixture(t *testing.T) (CouponService, *memCouponRepo) {
	t.Helper()
	coupons := newMemCouponRepo()
	return NewCouponService(coupons), coupons
}

func validCouponRequest() CreateCouponRequest {
	return CreateCouponRequest{
		Code:           "WELCOME10",
		DiscountType:   string(models.DiscountPercentage),
		DiscountValue:  10,
		MinOrderAmount: 200,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		UsageLimit:     5,
	}
}

func TestCreateCoupon(t *testing.T) {
	svc, _ := newCouponFixture(t)

	coupon, err := svc.Create(adminActor(), validCouponRequest())
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", coupon.Code)
	assert.True(t, coupon.IsActive)
	assert.Equal(t, adminActor().UserID, coupon.CreatedBy)
}

func TestCreateCoupon_NormalizesCode(t *testing.T) {
	svc, _ := newCouponFixture(t)

	req := validCouponRequest()
	req.Code = "  welcome10 "
	coupon, err := svc.Create(adminActor(), req)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", coupon.Code)
}

func TestCreateCoupon_Duplicate(t *testing.T) {
	svc, _ := newCouponFixture(t)

	_, err := svc.Create(adminActor(), validCouponRequest())
	require.NoError(t, err)

	_, err = svc.Create(adminActor(), validCouponRequest())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateCoupon_NonAdminForbidden(t *testing.T) {
	svc, _ := newCouponFixture(t)

	_, err := svc.Create(models.Actor{UserID: 1, Role: models.RoleCustomer}, validCouponRequest())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(models.Actor{UserID: 2, Role: models.RoleSeller}, validCouponRequest())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateCoupon_BadDiscountType(t *testing.T) {
	svc, _ := newCouponFixture(t)

	req := validCouponRequest()
	req.DiscountType = "bogo"
	_, err := svc.Create(adminActor(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRedeemCoupon_Percentage(t *testing.T) {
	svc, _ := newCouponFixture(t)
	_, err := svc.Create(adminActor(), validCouponRequest())
	require.NoError(t, err)

	discount, err := svc.Redeem("welcome10", 500)
	require.NoError(t, err)
	assert.Equal(t, 50.0, discount)
}

func TestRedeemCoupon_Flat(t *testing.T) {
	svc, _ := newCouponFixture(t)

	req := validCouponRequest()
	req.Code = "FLAT75"
	req.DiscountType = string(models.DiscountFlat)
	req.DiscountValue = 75
	_, err := svc.Create(adminActor(), req)
	require.NoError(t, err)

	discount, err := svc.Redeem("FLAT75", 500)
	require.NoError(t, err)
	assert.Equal(t, 75.0, discount)
}

func TestRedeemCoupon_Unknown(t *testing.T) {
	svc, _ := newCouponFixture(t)

	_, err := svc.Redeem("NOSUCH", 500)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemCoupon_Expired(t *testing.T) {
	svc, _ := newCouponFixture(t)

	req := validCouponRequest()
	req.ExpiresAt = time.Now().Add(-time.Hour)
	_, err := svc.Create(adminActor(), req)
	require.NoError(t, err)

	_, err = svc.Redeem("WELCOME10", 500)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRedeemCoupon_BelowMinimum(t *testing.T) {
	svc, _ := newCouponFixture(t)
	_, err := svc.Create(adminActor(), validCouponRequest())
	require.NoError(t, err)

	_, err = svc.Redeem("WELCOME10", 150)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRedeemCoupon_Inactive(t *testing.T) {
	svc, _ := newCouponFixture(t)
	coupon, err := svc.Create(adminActor(), validCouponRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(adminActor(), coupon.ID))

	_, err = svc.Redeem("WELCOME10", 500)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRedeemCoupon_UsageLimit(t *testing.T) {
	svc, coupons := newCouponFixture(t)

	req := validCouponRequest()
	req.UsageLimit = 2
	coupon, err := svc.Create(adminActor(), req)
	require.NoError(t, err)

	_, err = svc.Redeem("WELCOME10", 500)
	require.NoError(t, err)
	_, err = svc.Redeem("WELCOME10", 500)
	require.NoError(t, err)

	_, err = svc.Redeem("WELCOME10", 500)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := coupons.GetByCode(coupon.Code)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsedCount)
}

func TestListCoupons_NonAdminForbidden(t *testing.T) {
	svc, _ := newCouponFixture(t)

	_, _, err := svc.List(models.Actor{UserID: 1, Role: models.RoleCustomer}, repository.CouponAll, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)
}
