package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral links a referred user to their referrer. The unique index on
// ReferredID means a user can only ever be referred once.
type Referral struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	ReferrerID            uint           `json:"referrer_id" gorm:"not null;index"`
	ReferredID            uint           `json:"referred_id" gorm:"uniqueIndex;not null"`
	Status                string         `json:"status" gorm:"default:'pending'"` // pending, completed
	ReferrerRewardType    string         `json:"referrer_reward_type"`
	ReferrerRewardValue   int            `json:"referrer_reward_value"`
	ReferrerRewardClaimed bool           `json:"referrer_reward_claimed" gorm:"default:false"`
	ReferredRewardType    string         `json:"referred_reward_type"`
	ReferredRewardValue   int            `json:"referred_reward_value"`
	ReferredRewardClaimed bool           `json:"referred_reward_claimed" gorm:"default:false"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
)

const (
	ReferralRewardPoints   = "points"
	ReferralRewardDiscount = "discount"

	// Fixed reward sizes: 100 points for the referrer, a 100 currency-unit
	// discount on the referred user's first order.
	ReferrerRewardPoints   = 100
	ReferredRewardDiscount = 100
)
