package repository

import "storefront/internal/models"

// Filters are closed variants rather than open key-value bags so that an
// invalid combination cannot be expressed by a caller.

// OrderStatusFilter either matches any status or exactly one.
type OrderStatusFilter struct {
	set    bool
	status models.OrderStatus
}

func AnyOrderStatus() OrderStatusFilter {
	return OrderStatusFilter{}
}

func WithOrderStatus(s models.OrderStatus) OrderStatusFilter {
	return OrderStatusFilter{set: true, status: s}
}

func (f OrderStatusFilter) Value() (models.OrderStatus, bool) {
	return f.status, f.set
}

type OrderFilter struct {
	UserID   uint // 0 = any user
	SellerID uint // 0 = any seller; non-zero restricts to orders containing the seller's items
	Status   OrderStatusFilter
}

// CouponStatusFilter is the admin list filter: all, only currently valid, or
// only expired coupons.
type CouponStatusFilter int

const (
	CouponAll CouponStatusFilter = iota
	CouponActive
	CouponExpired
)

type ProductFilter struct {
	SellerID   uint   // 0 = any
	Category   string // "" = any
	ActiveOnly bool
}

// TicketStatusFilter either matches any status or exactly one.
type TicketStatusFilter struct {
	set    bool
	status models.TicketStatus
}

func AnyTicketStatus() TicketStatusFilter {
	return TicketStatusFilter{}
}

func WithTicketStatus(s models.TicketStatus) TicketStatusFilter {
	return TicketStatusFilter{set: true, status: s}
}

func (f TicketStatusFilter) Value() (models.TicketStatus, bool) {
	return f.status, f.set
}
