package models

import (
	"time"
)

type Pincode struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	Code                  string         `json:"code" gorm:"uniqueIndex;not null"`
	City                  string         `json:"city"`
	State                 string         `json:"state"`
	IsServiceable         bool           `json:"is_serviceable" gorm:"default:true"`
	CODAvailable          bool           `json:"cod_available" gorm:"default:true"`
	StandardDays          int            `json:"standard_days" gorm:"default:5"`
	ExpressDays           int            `json:"express_days"`
	ExpressAvailable      bool           `json:"express_available" gorm:"default:false"`
	DeliveryCharge        float64        `json:"delivery_charge"`
	FreeDeliveryThreshold float64        `json:"free_delivery_threshold"`
	Slots                 []DeliverySlot `json:"slots" gorm:"foreignKey:PincodeID"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// DeliverySlot is a configured delivery window for a pincode. CutoffHour is
// the last hour of day at which the slot can still be booked for the nearest
// deliverable date.
type DeliverySlot struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	PincodeID  uint    `json:"pincode_id" gorm:"not null;index"`
	Label      string  `json:"label"` // e.g. "Morning", "Evening"
	StartHour  int     `json:"start_hour"`
	EndHour    int     `json:"end_hour"`
	CutoffHour int     `json:"cutoff_hour"`
	Surcharge  float64 `json:"surcharge"`
}
