package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(email, password string) (string, *models.User, error)
	Logout(token string) error
	GetByID(id uint) (*models.User, error)
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PhoneNumber  string `json:"phone_number"`
	ReferralCode string `json:"referral_code"`
}

type userService struct {
	userRepo   repository.UserRepository
	referrals  ReferralService
	sessions   *redis.Client
	sessionTTL time.Duration
}

func NewUserService(userRepo repository.UserRepository, referrals ReferralService, sessions *redis.Client, sessionTTL time.Duration) UserService {
	return &userService{
		userRepo:   userRepo,
		referrals:  referrals,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

func (s *userService) Register(req RegisterRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		PhoneNumber:  req.PhoneNumber,
		Role:         string(models.RoleCustomer),
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// An invalid referral code does not block signup.
	if req.ReferralCode != "" {
		if _, err := s.referrals.ApplyCode(req.ReferralCode, user.ID); err != nil {
			log.Printf("Warning: referral code %q not applied for user %d: %v", req.ReferralCode, user.ID, err)
		}
	}

	return user, nil
}

func (s *userService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token := uuid.NewString()
	session := &redis.SessionData{
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(token, session, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, user, nil
}

func (s *userService) Logout(token string) error {
	return s.sessions.DeleteSession(token)
}

func (s *userService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}
