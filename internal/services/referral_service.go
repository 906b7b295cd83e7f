package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type ReferralService interface {
	ApplyCode(code string, newUserID uint) (*models.Referral, error)
	Settle(referralID uint) (*models.Referral, error)
	// SettleForUser settles the pending referral of a referred user, if one
	// exists. Used by the payment-confirmation hook.
	SettleForUser(userID uint) error
	Stats(userID uint) (*ReferralStats, error)
}

type ReferralStats struct {
	ReferralCode string                     `json:"referral_code"`
	Referrals    []models.Referral          `json:"referrals"`
	Counts       *repository.ReferralCounts `json:"counts"`
}

// Originated referrals returned by Stats are capped at the most recent 50.
const referralListCap = 50

type referralService struct {
	referralRepo repository.ReferralRepository
	userRepo     repository.UserRepository
	loyalty      LoyaltyService
}

func NewReferralService(referralRepo repository.ReferralRepository, userRepo repository.UserRepository, loyalty LoyaltyService) ReferralService {
	return &referralService{referralRepo: referralRepo, userRepo: userRepo, loyalty: loyalty}
}

func (s *referralService) ApplyCode(code string, newUserID uint) (*models.Referral, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, fmt.Errorf("%w: referral code is required", ErrValidation)
	}

	referrer, err := s.userRepo.GetByReferralCode(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: referral code %s", ErrNotFound, normalized)
		}
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	if referrer.ID == newUserID {
		return nil, ErrSelfReferral
	}

	_, err = s.referralRepo.GetByReferredID(newUserID)
	if err == nil {
		return nil, ErrAlreadyReferred
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing referral: %w", err)
	}

	referral := &models.Referral{
		ReferrerID:          referrer.ID,
		ReferredID:          newUserID,
		Status:              string(models.ReferralPending),
		ReferrerRewardType:  models.ReferralRewardPoints,
		ReferrerRewardValue: models.ReferrerRewardPoints,
		ReferredRewardType:  models.ReferralRewardDiscount,
		ReferredRewardValue: models.ReferredRewardDiscount,
	}
	if err := s.referralRepo.Create(referral); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}
	return referral, nil
}

func (s *referralService) Settle(referralID uint) (*models.Referral, error) {
	referral, err := s.referralRepo.GetByID(referralID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: referral %d", ErrNotFound, referralID)
		}
		return nil, fmt.Errorf("failed to load referral: %w", err)
	}

	// Conditional flip keeps settlement idempotent: a second attempt on a
	// completed referral changes nothing and credits nothing.
	ok, err := s.referralRepo.MarkCompleted(referral.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to settle referral: %w", err)
	}
	if ok {
		_, err = s.loyalty.Credit(referral.ReferrerID, referral.ReferrerRewardValue, "referral reward", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to credit referrer: %w", err)
		}
	}

	return s.referralRepo.GetByID(referral.ID)
}

func (s *referralService) SettleForUser(userID uint) error {
	referral, err := s.referralRepo.GetByReferredID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if referral.Status != string(models.ReferralPending) {
		return nil
	}
	_, err = s.Settle(referral.ID)
	return err
}

func (s *referralService) Stats(userID uint) (*ReferralStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	// Derive a stable code from the user id on first read.
	code := user.ReferralCode
	if code == "" {
		code = fmt.Sprintf("BKC%06X", user.ID)
		if err := s.userRepo.SetReferralCode(user.ID, code); err != nil {
			log.Printf("Warning: failed to persist referral code for user %d: %v", user.ID, err)
		}
	}

	referrals, err := s.referralRepo.ListByReferrer(userID, referralListCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	counts, err := s.referralRepo.Counts(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	return &ReferralStats{
		ReferralCode: code,
		Referrals:    referrals,
		Counts:       counts,
	}, nil
}
