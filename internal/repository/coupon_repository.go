package repository

import (
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(coupon *models.Coupon) error
	GetByCode(code string) (*models.Coupon, error)
	List(filter CouponStatusFilter, page, limit int) ([]models.Coupon, int64, error)
	// IncrementUsage consumes one use; ok is false when the usage limit is
	// exhausted.
	IncrementUsage(id uint) (bool, error)
	Deactivate(id uint) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *couponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) List(filter CouponStatusFilter, page, limit int) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})

	now := time.Now()
	switch filter {
	case CouponActive:
		query = query.Where("is_active = ? AND expires_at > ?", true, now)
	case CouponExpired:
		query = query.Where("expires_at <= ?", now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []models.Coupon
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&coupons).Error
	return coupons, total, err
}

func (r *couponRepository) IncrementUsage(id uint) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *couponRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).Update("is_active", false).Error
}
