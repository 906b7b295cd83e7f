package repository

import (
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(number string) (*models.Order, error)
	List(filter OrderFilter, page, limit int) ([]models.Order, int64, error)
	AppendStatus(orderID uint, entry *models.OrderStatusEntry, deliveredAt *time.Time) error
	UpdatePayment(orderID uint, paymentStatus models.PaymentStatus, paymentRef string) error
	SetTracking(orderID uint, trackingNumber, carrier string) error
	CountPaidByUser(userID uint) (int64, error)
	SalesSummary(start, end time.Time) ([]SalesRow, error)
	TopProducts(start, end time.Time, limit int) ([]ProductRow, error)
}

// SalesRow is one group of the admin sales aggregation.
type SalesRow struct {
	Status  string  `json:"status"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type ProductRow struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByOrderNumber(number string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("order_number = ?", number).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID != 0 {
		query = query.Where("orders.user_id = ?", filter.UserID)
	}
	if filter.SellerID != 0 {
		query = query.Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("order_items.seller_id = ?", filter.SellerID).
			Distinct("orders.*")
	}
	if status, ok := filter.Status.Value(); ok {
		query = query.Where("orders.status = ?", string(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("orders.created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// AppendStatus writes the ledger entry and the derived live status in one
// transaction so the order can never be observed with a status that is not
// the latest history row.
func (r *orderRepository) AppendStatus(orderID uint, entry *models.OrderStatusEntry, deliveredAt *time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		entry.OrderID = orderID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     entry.Status,
			"updated_at": entry.CreatedAt,
		}
		if deliveredAt != nil {
			updates["delivered_at"] = *deliveredAt
		}
		return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
}

func (r *orderRepository) UpdatePayment(orderID uint, paymentStatus models.PaymentStatus, paymentRef string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"payment_status": string(paymentStatus),
		"payment_ref":    paymentRef,
	}).Error
}

func (r *orderRepository) SetTracking(orderID uint, trackingNumber, carrier string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"tracking_number": trackingNumber,
		"carrier":         carrier,
	}).Error
}

func (r *orderRepository) CountPaidByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND payment_status = ?", userID, string(models.PaymentCompleted)).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) SalesSummary(start, end time.Time) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *orderRepository) TopProducts(start, end time.Time, limit int) ([]ProductRow, error) {
	var rows []ProductRow
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.name, SUM(order_items.quantity) AS quantity, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at BETWEEN ? AND ?", start, end).
		Group("order_items.product_id, order_items.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
