package repository

import (
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type BannerRepository interface {
	CreateBanner(banner *models.Banner) error
	ListActiveBanners() ([]models.Banner, error)
	CreateOffer(offer *models.Offer) error
	ListActiveOffers(now time.Time) ([]models.Offer, error)
}

type bannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) CreateBanner(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

func (r *bannerRepository) ListActiveBanners() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("is_active = ?", true).Order("position ASC").Find(&banners).Error
	return banners, err
}

func (r *bannerRepository) CreateOffer(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

func (r *bannerRepository) ListActiveOffers(now time.Time) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.Where("is_active = ? AND starts_at <= ? AND ends_at >= ?", true, now, now).
		Order("starts_at DESC").Find(&offers).Error
	return offers, err
}
