package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type CouponService interface {
	Create(actor models.Actor, req CreateCouponRequest) (*models.Coupon, error)
	List(actor models.Actor, filter repository.CouponStatusFilter, page, limit int) ([]models.Coupon, int64, error)
	// Redeem validates the coupon against the order amount and consumes one
	// use, returning the discount value.
	Redeem(code string, orderAmount float64) (float64, error)
	Deactivate(actor models.Actor, id uint) error
}

type CreateCouponRequest struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  float64   `json:"discount_value"`
	MinOrderAmount float64   `json:"min_order_amount"`
	ExpiresAt      time.Time `json:"expires_at"`
	UsageLimit     int       `json:"usage_limit"`
}

type couponService struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo}
}

func (s *couponService) Create(actor models.Actor, req CreateCouponRequest) (*models.Coupon, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can create coupons", ErrForbidden)
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is required", ErrValidation)
	}
	if req.DiscountType != string(models.DiscountPercentage) && req.DiscountType != string(models.DiscountFlat) {
		return nil, fmt.Errorf("%w: unknown discount type %q", ErrValidation, req.DiscountType)
	}
	if req.DiscountValue <= 0 {
		return nil, fmt.Errorf("%w: discount value must be positive", ErrValidation)
	}

	if _, err := s.couponRepo.GetByCode(code); err == nil {
		return nil, fmt.Errorf("%w: coupon code %s already exists", ErrConflict, code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}

	coupon := &models.Coupon{
		Code:           code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ExpiresAt:      req.ExpiresAt,
		UsageLimit:     req.UsageLimit,
		IsActive:       true,
		CreatedBy:      actor.UserID,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (s *couponService) List(actor models.Actor, filter repository.CouponStatusFilter, page, limit int) ([]models.Coupon, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: only admins can list coupons", ErrForbidden)
	}
	return s.couponRepo.List(filter, page, limit)
}

func (s *couponService) Redeem(code string, orderAmount float64) (float64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.couponRepo.GetByCode(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: coupon %s", ErrNotFound, normalized)
		}
		return 0, fmt.Errorf("failed to load coupon: %w", err)
	}

	if !coupon.IsActive {
		return 0, fmt.Errorf("%w: coupon %s is inactive", ErrValidation, normalized)
	}
	if time.Now().After(coupon.ExpiresAt) {
		return 0, fmt.Errorf("%w: coupon %s has expired", ErrValidation, normalized)
	}
	if orderAmount < coupon.MinOrderAmount {
		return 0, fmt.Errorf("%w: order total below coupon minimum of %.2f", ErrValidation, coupon.MinOrderAmount)
	}

	ok, err := s.couponRepo.IncrementUsage(coupon.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to consume coupon use: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: coupon %s usage limit reached", ErrConflict, normalized)
	}

	if coupon.DiscountType == string(models.DiscountPercentage) {
		return orderAmount * coupon.DiscountValue / 100, nil
	}
	return coupon.DiscountValue, nil
}

func (s *couponService) Deactivate(actor models.Actor, id uint) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can deactivate coupons", ErrForbidden)
	}
	return s.couponRepo.Deactivate(id)
}
