package models

import (
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Code           string         `json:"code" gorm:"uniqueIndex;not null"` // stored uppercase
	DiscountType   string         `json:"discount_type" gorm:"not null"`    // percentage, flat
	DiscountValue  float64        `json:"discount_value" gorm:"not null"`
	MinOrderAmount float64        `json:"min_order_amount"`
	ExpiresAt      time.Time      `json:"expires_at"`
	UsageLimit     int            `json:"usage_limit"`
	UsedCount      int            `json:"used_count" gorm:"default:0"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedBy      uint           `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)
