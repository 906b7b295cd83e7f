package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/pkg/courier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentRegistrar registers a shipment with the carrier. Satisfied by
// *courier.Client.
type ShipmentRegistrar interface {
	CreateShipment(req courier.CreateShipmentRequest) (*courier.CreateShipmentResponse, error)
}

// NotificationSender delivers the order-confirmation notification. Satisfied
// by *mailer.Client.
type NotificationSender interface {
	SendOrderConfirmation(email, name, orderNumber string, total float64) error
}

// ReferralSettler settles a referred user's pending referral after their
// first paid order. Satisfied by ReferralService.
type ReferralSettler interface {
	SettleForUser(userID uint) error
}

type OrderService interface {
	PlaceOrder(actor models.Actor, req PlaceOrderRequest) (*models.Order, error)
	GetOrder(actor models.Actor, orderID uint) (*models.Order, error)
	ListOrders(actor models.Actor, status repository.OrderStatusFilter, page, limit int) ([]models.Order, int64, error)
	AdvanceStatus(actor models.Actor, orderID uint, newStatus models.OrderStatus, note string) (*models.Order, error)
	ConfirmPayment(orderNumber, paymentRef string) (*models.Order, error)
}

type PlaceOrderRequest struct {
	Items        []PlaceOrderItem `json:"items"`
	AddressLine  string           `json:"address_line"`
	City         string           `json:"city"`
	State        string           `json:"state"`
	Pincode      string           `json:"pincode"`
	CouponCode   string           `json:"coupon_code"`
	RedeemPoints int              `json:"redeem_points"`
}

type PlaceOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// allowedTransitions is the explicit order state machine. Any target status
// outside the table is rejected; cancelled and returned are terminal.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:         {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed:       {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing:      {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:         {models.OrderDelivered},
	models.OrderDelivered:       {models.OrderReturnRequested},
	models.OrderReturnRequested: {models.OrderReturned},
	models.OrderCancelled:       {},
	models.OrderReturned:        {},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	pincodeRepo  repository.PincodeRepository
	referralRepo repository.ReferralRepository
	userRepo     repository.UserRepository
	coupons      CouponService
	loyalty      LoyaltyService
	referrals    ReferralSettler
	registrar    ShipmentRegistrar
	notifier     NotificationSender
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	pincodeRepo repository.PincodeRepository,
	referralRepo repository.ReferralRepository,
	userRepo repository.UserRepository,
	coupons CouponService,
	loyalty LoyaltyService,
	referrals ReferralSettler,
	registrar ShipmentRegistrar,
	notifier NotificationSender,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		pincodeRepo:  pincodeRepo,
		referralRepo: referralRepo,
		userRepo:     userRepo,
		coupons:      coupons,
		loyalty:      loyalty,
		referrals:    referrals,
		registrar:    registrar,
		notifier:     notifier,
	}
}

func (s *orderService) PlaceOrder(actor models.Actor, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if req.AddressLine == "" || req.Pincode == "" {
		return nil, fmt.Errorf("%w: delivery address is required", ErrValidation)
	}

	// The destination must be serviceable before anything is reserved.
	pincode, err := s.pincodeRepo.GetByCode(req.Pincode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pincode %s is not serviceable", ErrValidation, req.Pincode)
		}
		return nil, fmt.Errorf("failed to check serviceability: %w", err)
	}
	if !pincode.IsServiceable {
		return nil, fmt.Errorf("%w: pincode %s is not serviceable", ErrValidation, req.Pincode)
	}

	// Validate every line before anything is mutated, so the common failures
	// (unknown product, inactive, not enough stock) leave no claims behind.
	var items []models.OrderItem
	subtotal := 0.0
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is unavailable", ErrValidation, product.Name)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: product %s is out of stock", ErrConflict, product.Name)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		subtotal += float64(line.Quantity) * product.Price
	}

	// Reserve stock for the whole order; any failure past this point hands
	// the reservations back.
	var reserved []models.OrderItem
	releaseStock := func() {
		for _, item := range reserved {
			if err := s.productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				log.Printf("Warning: failed to release stock for product %d: %v", item.ProductID, err)
			}
		}
	}
	for _, item := range items {
		ok, err := s.productRepo.DecrementStock(item.ProductID, item.Quantity)
		if err != nil {
			releaseStock()
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			releaseStock()
			return nil, fmt.Errorf("%w: product %s is out of stock", ErrConflict, item.Name)
		}
		reserved = append(reserved, item)
	}

	deliveryCharge := pincode.DeliveryCharge
	if pincode.FreeDeliveryThreshold > 0 && subtotal >= pincode.FreeDeliveryThreshold {
		deliveryCharge = 0
	}

	discount := 0.0
	couponCode := ""
	if req.CouponCode != "" {
		couponDiscount, err := s.coupons.Redeem(req.CouponCode, subtotal)
		if err != nil {
			releaseStock()
			return nil, err
		}
		discount += couponDiscount
		couponCode = strings.ToUpper(strings.TrimSpace(req.CouponCode))
	}

	// First-order discount for a referred user, claimed exactly once.
	referral, err := s.referralRepo.GetByReferredID(actor.UserID)
	if err == nil && !referral.ReferredRewardClaimed {
		discount += float64(referral.ReferredRewardValue)
		if err := s.referralRepo.MarkReferredRewardClaimed(referral.ID); err != nil {
			releaseStock()
			return nil, fmt.Errorf("failed to claim referred reward: %w", err)
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		releaseStock()
		return nil, fmt.Errorf("failed to check referral: %w", err)
	}

	if req.RedeemPoints > 0 {
		result, err := s.loyalty.Redeem(actor.UserID, req.RedeemPoints, nil)
		if err != nil {
			releaseStock()
			return nil, err
		}
		discount += float64(result.Discount)
	}

	total := subtotal + deliveryCharge - discount
	if total < 0 {
		total = 0
	}

	now := time.Now()
	order := &models.Order{
		OrderNumber:    fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.NewString()[:8])),
		UserID:         actor.UserID,
		Items:          items,
		Status:         string(models.OrderPending),
		PaymentStatus:  string(models.PaymentPending),
		TotalAmount:    total,
		DiscountAmount: discount,
		CouponCode:     couponCode,
		PointsRedeemed: req.RedeemPoints,
		AddressLine:    req.AddressLine,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		StatusHistory: []models.OrderStatusEntry{{
			Status:    string(models.OrderPending),
			ActorID:   actor.UserID,
			Note:      "order placed",
			CreatedAt: now,
		}},
	}
	if err := s.orderRepo.Create(order); err != nil {
		releaseStock()
		if req.RedeemPoints > 0 {
			if _, cerr := s.loyalty.Credit(actor.UserID, req.RedeemPoints, "order rollback", nil); cerr != nil {
				log.Printf("Warning: failed to return %d points to user %d: %v", req.RedeemPoints, actor.UserID, cerr)
			}
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(actor models.Actor, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if err := s.authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(actor models.Actor, status repository.OrderStatusFilter, page, limit int) ([]models.Order, int64, error) {
	filter := repository.OrderFilter{Status: status}
	switch actor.Role {
	case models.RoleAdmin:
		// admin sees everything
	case models.RoleSeller:
		filter.SellerID = actor.UserID
	default:
		filter.UserID = actor.UserID
	}
	return s.orderRepo.List(filter, page, limit)
}

// AdvanceStatus appends a ledger entry and moves the live status. Appending
// the same status again is a no-op; transitions outside the table are
// rejected.
func (s *orderService) AdvanceStatus(actor models.Actor, orderID uint, newStatus models.OrderStatus, note string) (*models.Order, error) {
	if !actor.IsAdmin() && !actor.IsSeller() {
		return nil, fmt.Errorf("%w: only sellers and admins can update order status", ErrForbidden)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if actor.IsSeller() {
		if err := s.authorize(actor, order); err != nil {
			return nil, err
		}
	}

	current := models.OrderStatus(order.Status)
	if current == newStatus {
		return order, nil
	}
	if !transitionAllowed(current, newStatus) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrValidation, current, newStatus)
	}

	now := time.Now()
	entry := &models.OrderStatusEntry{
		Status:    string(newStatus),
		ActorID:   actor.UserID,
		Note:      note,
		CreatedAt: now,
	}
	var deliveredAt *time.Time
	if newStatus == models.OrderDelivered {
		deliveredAt = &now
	}
	if err := s.orderRepo.AppendStatus(order.ID, entry, deliveredAt); err != nil {
		return nil, fmt.Errorf("failed to append status: %w", err)
	}

	return s.orderRepo.GetByID(order.ID)
}

// ConfirmPayment handles the payment-gateway success callback. The status
// write is the unit of work; notification, shipment registration and
// referral settlement are best-effort and never roll it back.
func (s *orderService) ConfirmPayment(orderNumber, paymentRef string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderNumber)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if err := s.orderRepo.UpdatePayment(order.ID, models.PaymentCompleted, paymentRef); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	// A repeated callback for an already-confirmed order only refreshes the
	// payment fields; the side effects fired on the first confirmation.
	alreadyConfirmed := models.OrderStatus(order.Status) == models.OrderConfirmed
	if !alreadyConfirmed {
		now := time.Now()
		entry := &models.OrderStatusEntry{
			Status:    string(models.OrderConfirmed),
			Note:      "payment confirmed",
			CreatedAt: now,
		}
		if err := s.orderRepo.AppendStatus(order.ID, entry, nil); err != nil {
			return nil, fmt.Errorf("failed to confirm order: %w", err)
		}
	}

	updated, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	if !alreadyConfirmed {
		s.dispatchPostPayment(updated)
	}

	return updated, nil
}

// dispatchPostPayment fires the decoupled side effects of a successful
// payment. Failures are logged only.
func (s *orderService) dispatchPostPayment(order *models.Order) {
	go func() {
		user, err := s.userRepo.GetByID(order.UserID)
		if err != nil {
			log.Printf("Warning: failed to load user %d for order notification: %v", order.UserID, err)
			return
		}
		if err := s.notifier.SendOrderConfirmation(user.Email, user.Name, order.OrderNumber, order.TotalAmount); err != nil {
			log.Printf("Warning: failed to send confirmation for order %s: %v", order.OrderNumber, err)
		}
	}()

	go func() {
		user, err := s.userRepo.GetByID(order.UserID)
		if err != nil {
			log.Printf("Warning: failed to load user %d for shipment: %v", order.UserID, err)
			return
		}
		resp, err := s.registrar.CreateShipment(courier.CreateShipmentRequest{
			OrderNumber: order.OrderNumber,
			Name:        user.Name,
			AddressLine: order.AddressLine,
			City:        order.City,
			State:       order.State,
			Pincode:     order.Pincode,
		})
		if err != nil {
			log.Printf("Warning: failed to register shipment for order %s: %v", order.OrderNumber, err)
			return
		}
		if err := s.orderRepo.SetTracking(order.ID, resp.Data.TrackingNumber, resp.Data.Carrier); err != nil {
			log.Printf("Warning: failed to record tracking number for order %s: %v", order.OrderNumber, err)
		}
	}()

	go func() {
		if err := s.referrals.SettleForUser(order.UserID); err != nil {
			log.Printf("Warning: failed to settle referral for user %d: %v", order.UserID, err)
		}
	}()
}

// authorize checks that the actor may see the order: customers their own,
// sellers orders containing their items, admins everything.
func (s *orderService) authorize(actor models.Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsSeller() {
		for _, item := range order.Items {
			if item.SellerID == actor.UserID {
				return nil
			}
		}
		return fmt.Errorf("%w: order does not contain your items", ErrForbidden)
	}
	if order.UserID != actor.UserID {
		return fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return nil
}
