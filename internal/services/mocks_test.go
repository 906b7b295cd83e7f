package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/pkg/courier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hand-written in-memory repositories shared by the service tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (m *memUserRepo) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepo) GetByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserRepo) GetByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) GetByReferralCode(code string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ReferralCode == code && code != "" {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) Update(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepo) SetReferralCode(id uint, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ReferralCode = code
	return nil
}

type memRewardRepo struct {
	mu    sync.Mutex
	users *memUserRepo
	txns  []models.RewardTransaction
}

func newMemRewardRepo(users *memUserRepo) *memRewardRepo {
	return &memRewardRepo{users: users}
}

func (m *memRewardRepo) Credit(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users.mu.Lock()
	user, ok := m.users.users[userID]
	if !ok {
		m.users.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	user.RewardPoints += points
	balance := user.RewardPoints
	m.users.mu.Unlock()

	txn := models.RewardTransaction{
		ID:           uint(len(m.txns) + 1),
		TxnNumber:    uuid.NewString(),
		UserID:       userID,
		Type:         string(models.RewardEarned),
		Points:       points,
		BalanceAfter: balance,
		Source:       source,
		OrderID:      orderID,
		CreatedAt:    time.Now(),
	}
	m.txns = append(m.txns, txn)
	return &txn, nil
}

func (m *memRewardRepo) Redeem(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users.mu.Lock()
	user, ok := m.users.users[userID]
	if !ok {
		m.users.mu.Unlock()
		return nil, false, gorm.ErrRecordNotFound
	}
	if user.RewardPoints < points {
		m.users.mu.Unlock()
		return nil, false, nil
	}
	user.RewardPoints -= points
	balance := user.RewardPoints
	m.users.mu.Unlock()

	txn := models.RewardTransaction{
		ID:           uint(len(m.txns) + 1),
		TxnNumber:    uuid.NewString(),
		UserID:       userID,
		Type:         string(models.RewardRedeemed),
		Points:       points,
		BalanceAfter: balance,
		Source:       source,
		OrderID:      orderID,
		CreatedAt:    time.Now(),
	}
	m.txns = append(m.txns, txn)
	return &txn, true, nil
}

func (m *memRewardRepo) Latest(userID uint) (*models.RewardTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.txns) - 1; i >= 0; i-- {
		if m.txns[i].UserID == userID {
			txn := m.txns[i]
			return &txn, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRewardRepo) ListByUser(userID uint, page, limit int) ([]models.RewardTransaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RewardTransaction
	for i := len(m.txns) - 1; i >= 0; i-- {
		if m.txns[i].UserID == userID {
			out = append(out, m.txns[i])
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRewardRepo) transactionsFor(userID uint) []models.RewardTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RewardTransaction
	for _, txn := range m.txns {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	return out
}

type memReferralRepo struct {
	mu        sync.Mutex
	nextID    uint
	referrals map[uint]*models.Referral
}

func newMemReferralRepo() *memReferralRepo {
	return &memReferralRepo{nextID: 1, referrals: make(map[uint]*models.Referral)}
}

func (m *memReferralRepo) Create(referral *models.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.referrals {
		if existing.ReferredID == referral.ReferredID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	referral.ID = m.nextID
	referral.CreatedAt = time.Now()
	m.nextID++
	copied := *referral
	m.referrals[referral.ID] = &copied
	return nil
}

func (m *memReferralRepo) GetByID(id uint) (*models.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	referral, ok := m.referrals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *referral
	return &copied, nil
}

func (m *memReferralRepo) GetByReferredID(referredID uint) (*models.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, referral := range m.referrals {
		if referral.ReferredID == referredID {
			copied := *referral
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memReferralRepo) ListByReferrer(referrerID uint, limit int) ([]models.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Referral
	for _, referral := range m.referrals {
		if referral.ReferrerID == referrerID {
			out = append(out, *referral)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReferralRepo) Counts(referrerID uint) (*repository.ReferralCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := &repository.ReferralCounts{}
	for _, referral := range m.referrals {
		if referral.ReferrerID != referrerID {
			continue
		}
		counts.Total++
		if referral.Status == string(models.ReferralCompleted) {
			counts.Completed++
		} else {
			counts.Pending++
		}
		if referral.ReferrerRewardClaimed {
			counts.TotalEarned += int64(referral.ReferrerRewardValue)
		}
	}
	return counts, nil
}

func (m *memReferralRepo) MarkCompleted(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	referral, ok := m.referrals[id]
	if !ok || referral.Status != string(models.ReferralPending) {
		return false, nil
	}
	referral.Status = string(models.ReferralCompleted)
	referral.ReferrerRewardClaimed = true
	return true, nil
}

func (m *memReferralRepo) MarkReferredRewardClaimed(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	referral, ok := m.referrals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	referral.ReferredRewardClaimed = true
	return nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1, orders: make(map[uint]*models.Order)}
}

func copyOrder(order *models.Order) *models.Order {
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	copied.StatusHistory = append([]models.OrderStatusEntry(nil), order.StatusHistory...)
	return &copied
}

func (m *memOrderRepo) Create(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = m.nextID
	m.nextID++
	m.orders[order.ID] = copyOrder(order)
	return nil
}

func (m *memOrderRepo) GetByID(id uint) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(order), nil
}

func (m *memOrderRepo) GetByOrderNumber(number string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.OrderNumber == number {
			return copyOrder(order), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) List(filter repository.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, order := range m.orders {
		if filter.UserID != 0 && order.UserID != filter.UserID {
			continue
		}
		if filter.SellerID != 0 {
			found := false
			for _, item := range order.Items {
				if item.SellerID == filter.SellerID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if status, ok := filter.Status.Value(); ok && order.Status != string(status) {
			continue
		}
		out = append(out, *copyOrder(order))
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) AppendStatus(orderID uint, entry *models.OrderStatusEntry, deliveredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.OrderID = orderID
	order.StatusHistory = append(order.StatusHistory, *entry)
	order.Status = entry.Status
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}
	return nil
}

func (m *memOrderRepo) UpdatePayment(orderID uint, paymentStatus models.PaymentStatus, paymentRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.PaymentStatus = string(paymentStatus)
	order.PaymentRef = paymentRef
	return nil
}

func (m *memOrderRepo) SetTracking(orderID uint, trackingNumber, carrier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.TrackingNumber = trackingNumber
	order.Carrier = carrier
	return nil
}

func (m *memOrderRepo) CountPaidByUser(userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, order := range m.orders {
		if order.UserID == userID && order.PaymentStatus == string(models.PaymentCompleted) {
			count++
		}
	}
	return count, nil
}

func (m *memOrderRepo) SalesSummary(start, end time.Time) ([]repository.SalesRow, error) {
	return nil, nil
}

func (m *memOrderRepo) TopProducts(start, end time.Time, limit int) ([]repository.ProductRow, error) {
	return nil, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1, products: make(map[uint]*models.Product)}
}

func (m *memProductRepo) Create(product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = m.nextID
	m.nextID++
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memProductRepo) GetByID(id uint) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *memProductRepo) GetBySlug(slug string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.Slug == slug {
			copied := *product
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memProductRepo) List(filter repository.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, product := range m.products {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

func (m *memProductRepo) Update(product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memProductRepo) DecrementStock(id uint, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

func (m *memProductRepo) ReleaseStock(id uint, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	product.Stock += quantity
	return nil
}

type memPincodeRepo struct {
	mu       sync.Mutex
	pincodes map[string]*models.Pincode
}

func newMemPincodeRepo() *memPincodeRepo {
	return &memPincodeRepo{pincodes: make(map[string]*models.Pincode)}
}

func (m *memPincodeRepo) Create(pincode *models.Pincode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *pincode
	m.pincodes[pincode.Code] = &copied
	return nil
}

func (m *memPincodeRepo) GetByCode(code string) (*models.Pincode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pincode, ok := m.pincodes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *pincode
	copied.Slots = append([]models.DeliverySlot(nil), pincode.Slots...)
	return &copied, nil
}

func (m *memPincodeRepo) List(page, limit int) ([]models.Pincode, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Pincode
	for _, pincode := range m.pincodes {
		out = append(out, *pincode)
	}
	return out, int64(len(out)), nil
}

func (m *memPincodeRepo) Update(pincode *models.Pincode) error {
	return m.Create(pincode)
}

type memCouponRepo struct {
	mu      sync.Mutex
	nextID  uint
	coupons map[uint]*models.Coupon
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{nextID: 1, coupons: make(map[uint]*models.Coupon)}
}

func (m *memCouponRepo) Create(coupon *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon.ID = m.nextID
	m.nextID++
	copied := *coupon
	m.coupons[coupon.ID] = &copied
	return nil
}

func (m *memCouponRepo) GetByCode(code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, coupon := range m.coupons {
		if coupon.Code == code {
			copied := *coupon
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCouponRepo) List(filter repository.CouponStatusFilter, page, limit int) ([]models.Coupon, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []models.Coupon
	for _, coupon := range m.coupons {
		switch filter {
		case repository.CouponActive:
			if !coupon.IsActive || !coupon.ExpiresAt.After(now) {
				continue
			}
		case repository.CouponExpired:
			if coupon.ExpiresAt.After(now) {
				continue
			}
		}
		out = append(out, *coupon)
	}
	return out, int64(len(out)), nil
}

func (m *memCouponRepo) IncrementUsage(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon, ok := m.coupons[id]
	if !ok {
		return false, nil
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return false, nil
	}
	coupon.UsedCount++
	return true, nil
}

func (m *memCouponRepo) Deactivate(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon, ok := m.coupons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	coupon.IsActive = false
	return nil
}

// Best-effort collaborators.

type fakeRegistrar struct {
	mu       sync.Mutex
	calls    int
	fail     bool
	tracking string
	carrier  string
}

func (f *fakeRegistrar) CreateShipment(req courier.CreateShipmentRequest) (*courier.CreateShipmentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("carrier unavailable")
	}
	resp := &courier.CreateShipmentResponse{Success: true}
	resp.Data.TrackingNumber = f.tracking
	resp.Data.Carrier = f.carrier
	return resp, nil
}

func (f *fakeRegistrar) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeNotifier) SendOrderConfirmation(email, name, orderNumber string, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("mailer unavailable")
	}
	return nil
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
