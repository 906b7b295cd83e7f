package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type ServiceabilityService interface {
	Check(pincode string, now time.Time) (*ServiceabilityResult, error)
	CreatePincode(actor models.Actor, pincode *models.Pincode) error
	ListPincodes(actor models.Actor, page, limit int) ([]models.Pincode, int64, error)
}

type ServiceabilityResult struct {
	Pincode               string       `json:"pincode"`
	IsServiceable         bool         `json:"is_serviceable"`
	City                  string       `json:"city,omitempty"`
	State                 string       `json:"state,omitempty"`
	CODAvailable          bool         `json:"cod_available"`
	DeliveryCharge        float64      `json:"delivery_charge"`
	FreeDeliveryThreshold float64      `json:"free_delivery_threshold"`
	StandardDelivery      string       `json:"standard_delivery,omitempty"`
	ExpressDelivery       string       `json:"express_delivery,omitempty"`
	Slots                 []SlotOption `json:"slots,omitempty"`
}

type SlotOption struct {
	Date      string  `json:"date"`
	Label     string  `json:"label"`
	Surcharge float64 `json:"surcharge"`
}

// Slots are offered for a three day window starting at the standard
// delivery date.
const slotWindowDays = 2

type serviceabilityService struct {
	pincodeRepo repository.PincodeRepository
	cache       *redis.Client
	cacheTTL    time.Duration
}

func NewServiceabilityService(pincodeRepo repository.PincodeRepository, cache *redis.Client, cacheTTL time.Duration) ServiceabilityService {
	return &serviceabilityService{pincodeRepo: pincodeRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *serviceabilityService) Check(code string, now time.Time) (*ServiceabilityResult, error) {
	// Slot availability only changes on the hour, so results are cached per
	// pincode and hour.
	cacheKey := fmt.Sprintf("%s:%s", code, now.Format("2006010215"))
	if s.cache != nil {
		var cached ServiceabilityResult
		if err := s.cache.GetServiceability(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	pincode, err := s.pincodeRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown pincode is a soft failure, not an error.
			return &ServiceabilityResult{Pincode: code, IsServiceable: false}, nil
		}
		return nil, fmt.Errorf("failed to look up pincode: %w", err)
	}
	if !pincode.IsServiceable {
		return &ServiceabilityResult{Pincode: code, IsServiceable: false}, nil
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	result := &ServiceabilityResult{
		Pincode:               pincode.Code,
		IsServiceable:         true,
		City:                  pincode.City,
		State:                 pincode.State,
		CODAvailable:          pincode.CODAvailable,
		DeliveryCharge:        pincode.DeliveryCharge,
		FreeDeliveryThreshold: pincode.FreeDeliveryThreshold,
		StandardDelivery:      midnight.AddDate(0, 0, pincode.StandardDays).Format("2006-01-02"),
	}
	if pincode.ExpressAvailable {
		result.ExpressDelivery = midnight.AddDate(0, 0, pincode.ExpressDays).Format("2006-01-02")
	}
	result.Slots = offerableSlots(pincode, midnight, now.Hour())

	if s.cache != nil {
		if err := s.cache.SetServiceability(cacheKey, result, s.cacheTTL); err != nil {
			log.Printf("Warning: failed to cache serviceability for %s: %v", code, err)
		}
	}

	return result, nil
}

func (s *serviceabilityService) CreatePincode(actor models.Actor, pincode *models.Pincode) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can manage pincodes", ErrForbidden)
	}
	if pincode.Code == "" {
		return fmt.Errorf("%w: pincode code is required", ErrValidation)
	}
	if err := s.pincodeRepo.Create(pincode); err != nil {
		return fmt.Errorf("failed to create pincode: %w", err)
	}
	return nil
}

func (s *serviceabilityService) ListPincodes(actor models.Actor, page, limit int) ([]models.Pincode, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: only admins can manage pincodes", ErrForbidden)
	}
	return s.pincodeRepo.List(page, limit)
}

// offerableSlots lists slots for the window [standardDays, standardDays+2]
// days out. On the nearest day a slot is dropped once the current hour has
// reached its cutoff; further-out days offer every configured slot.
func offerableSlots(pincode *models.Pincode, midnight time.Time, currentHour int) []SlotOption {
	var slots []SlotOption
	for offset := pincode.StandardDays; offset <= pincode.StandardDays+slotWindowDays; offset++ {
		date := midnight.AddDate(0, 0, offset)
		for _, slot := range pincode.Slots {
			if offset == pincode.StandardDays && currentHour >= slot.CutoffHour {
				continue
			}
			slots = append(slots, SlotOption{
				Date: date.Format("2006-01-02"),
				Label: fmt.Sprintf("%s, %s %s (%02d:00 - %02d:00)",
					date.Weekday(), date.Format("Jan 2"), slot.Label, slot.StartHour, slot.EndHour),
				Surcharge: slot.Surcharge,
			})
		}
	}
	return slots
}
