package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber    string               `json:"order_number" gorm:"unique;not null"`
	UserID         uint                 `json:"user_id" gorm:"not null;index"`
	Items          []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	Status         string               `json:"status" gorm:"default:'pending'"`
	PaymentStatus  string               `json:"payment_status" gorm:"default:'pending'"` // pending, completed, failed, refunded
	StatusHistory  []OrderStatusEntry   `json:"status_history" gorm:"foreignKey:OrderID"`
	TotalAmount    float64              `json:"total_amount" gorm:"not null"`
	DiscountAmount float64              `json:"discount_amount"`
	CouponCode     string               `json:"coupon_code"`
	PointsRedeemed int                  `json:"points_redeemed"`
	PaymentRef     string               `json:"payment_ref"`
	TrackingNumber string               `json:"tracking_number"`
	Carrier        string               `json:"carrier"`
	AddressLine    string               `json:"address_line"`
	City           string               `json:"city"`
	State          string               `json:"state"`
	Pincode        string               `json:"pincode"`
	DeliveredAt    *time.Time           `json:"delivered_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `json:"deleted_at" gorm:"index"`
}

type OrderItem struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrderID   uint           `json:"order_id" gorm:"not null;index"`
	ProductID uint           `json:"product_id" gorm:"not null"`
	SellerID  uint           `json:"seller_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"not null"` // snapshot at purchase time
	Quantity  int            `json:"quantity" gorm:"not null"`
	UnitPrice float64        `json:"unit_price" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// OrderStatusEntry is one row of the append-only status ledger. Rows are
// never updated, reordered or deleted; Order.Status always mirrors the
// latest row.
type OrderStatusEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"not null"`
	ActorID   uint      `json:"actor_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderConfirmed       OrderStatus = "confirmed"
	OrderProcessing      OrderStatus = "processing"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
	OrderReturnRequested OrderStatus = "return_requested"
	OrderReturned        OrderStatus = "returned"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)
