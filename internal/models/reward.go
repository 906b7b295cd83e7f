package models

import (
	"time"
)

// RewardTransaction is one row of the append-only loyalty ledger. BalanceAfter
// snapshots the user's balance at commit time; the chain of snapshots is the
// audit trail for User.RewardPoints.
type RewardTransaction struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TxnNumber    string    `json:"txn_number" gorm:"uniqueIndex;not null"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Type         string    `json:"type" gorm:"not null"` // earned, redeemed
	Points       int       `json:"points" gorm:"not null"`
	BalanceAfter int       `json:"balance_after" gorm:"not null"`
	Source       string    `json:"source"`
	OrderID      *uint     `json:"order_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type RewardType string

const (
	RewardEarned   RewardType = "earned"
	RewardRedeemed RewardType = "redeemed"
)

// PointsPerCurrencyUnit is the fixed exchange rate for redemptions:
// 10 points buy 1 currency unit of discount.
const PointsPerCurrencyUnit = 10
