package repository

import (
	"storefront/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository interface {
	Create(referral *models.Referral) error
	GetByID(id uint) (*models.Referral, error)
	GetByReferredID(referredID uint) (*models.Referral, error)
	ListByReferrer(referrerID uint, limit int) ([]models.Referral, error)
	Counts(referrerID uint) (*ReferralCounts, error)
	// MarkCompleted flips pending to completed and claims the referrer
	// reward. ok is false when the referral was already completed.
	MarkCompleted(id uint) (bool, error)
	MarkReferredRewardClaimed(id uint) error
}

type ReferralCounts struct {
	Total       int64 `json:"total"`
	Completed   int64 `json:"completed"`
	Pending     int64 `json:"pending"`
	TotalEarned int64 `json:"total_earned"`
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

func (r *referralRepository) GetByID(id uint) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.First(&referral, id).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) GetByReferredID(referredID uint) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.Where("referred_id = ?", referredID).First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) ListByReferrer(referrerID uint, limit int) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.db.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&referrals).Error
	return referrals, err
}

func (r *referralRepository) Counts(referrerID uint) (*ReferralCounts, error) {
	counts := &ReferralCounts{}

	err := r.db.Model(&models.Referral{}).Where("referrer_id = ?", referrerID).Count(&counts.Total).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", referrerID, string(models.ReferralCompleted)).
		Count(&counts.Completed).Error
	if err != nil {
		return nil, err
	}
	counts.Pending = counts.Total - counts.Completed

	err = r.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND referrer_reward_claimed = ?", referrerID, true).
		Select("COALESCE(SUM(referrer_reward_value), 0)").
		Scan(&counts.TotalEarned).Error
	if err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *referralRepository) MarkCompleted(id uint) (bool, error) {
	// Conditional update keeps settlement idempotent under concurrent calls.
	result := r.db.Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, string(models.ReferralPending)).
		Updates(map[string]interface{}{
			"status":                  string(models.ReferralCompleted),
			"referrer_reward_claimed": true,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *referralRepository) MarkReferredRewardClaimed(id uint) error {
	return r.db.Model(&models.Referral{}).Where("id = ?", id).
		Update("referred_reward_claimed", true).Error
}
