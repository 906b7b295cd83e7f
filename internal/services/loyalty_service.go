package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type LoyaltyService interface {
	Credit(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, error)
	Redeem(userID uint, points int, orderID *uint) (*RedeemResult, error)
	History(userID uint, page, limit int) ([]models.RewardTransaction, int64, error)
	Balance(userID uint) (int, error)
}

// RedeemResult carries the ledger entry and the discount bought with the
// redeemed points at the fixed 10-points-per-unit rate.
type RedeemResult struct {
	Transaction *models.RewardTransaction `json:"transaction"`
	Discount    int                       `json:"discount"`
}

type loyaltyService struct {
	rewardRepo repository.RewardRepository
	userRepo   repository.UserRepository
}

func NewLoyaltyService(rewardRepo repository.RewardRepository, userRepo repository.UserRepository) LoyaltyService {
	return &loyaltyService{rewardRepo: rewardRepo, userRepo: userRepo}
}

func (s *loyaltyService) Credit(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrValidation)
	}

	txn, err := s.rewardRepo.Credit(userID, points, source, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}
	return txn, nil
}

func (s *loyaltyService) Redeem(userID uint, points int, orderID *uint) (*RedeemResult, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrValidation)
	}

	txn, ok, err := s.rewardRepo.Redeem(userID, points, "points redemption", orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}

	return &RedeemResult{
		Transaction: txn,
		Discount:    points / models.PointsPerCurrencyUnit,
	}, nil
}

func (s *loyaltyService) History(userID uint, page, limit int) ([]models.RewardTransaction, int64, error) {
	return s.rewardRepo.ListByUser(userID, page, limit)
}

func (s *loyaltyService) Balance(userID uint) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, err
	}
	return user.RewardPoints, nil
}
