package services

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type CatalogService interface {
	ListProducts(filter repository.ProductFilter, page, limit int) ([]models.Product, int64, error)
	GetProduct(slug string) (*models.Product, error)
	CreateProduct(actor models.Actor, product *models.Product) error
	ListBanners() ([]models.Banner, error)
	ListOffers(now time.Time) ([]models.Offer, error)
	CreateBanner(actor models.Actor, banner *models.Banner) error
	CreateOffer(actor models.Actor, offer *models.Offer) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	bannerRepo  repository.BannerRepository
}

func NewCatalogService(productRepo repository.ProductRepository, bannerRepo repository.BannerRepository) CatalogService {
	return &catalogService{productRepo: productRepo, bannerRepo: bannerRepo}
}

func (s *catalogService) ListProducts(filter repository.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	return s.productRepo.List(filter, page, limit)
}

func (s *catalogService) GetProduct(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(actor models.Actor, product *models.Product) error {
	if !actor.IsAdmin() && !actor.IsSeller() {
		return fmt.Errorf("%w: only sellers and admins can create products", ErrForbidden)
	}
	if product.Name == "" || product.Slug == "" {
		return fmt.Errorf("%w: name and slug are required", ErrValidation)
	}
	if product.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if actor.IsSeller() {
		product.SellerID = actor.UserID
	}
	if err := s.productRepo.Create(product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *catalogService) ListBanners() ([]models.Banner, error) {
	return s.bannerRepo.ListActiveBanners()
}

func (s *catalogService) ListOffers(now time.Time) ([]models.Offer, error) {
	return s.bannerRepo.ListActiveOffers(now)
}

func (s *catalogService) CreateBanner(actor models.Actor, banner *models.Banner) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can create banners", ErrForbidden)
	}
	if banner.Title == "" || banner.ImageURL == "" {
		return fmt.Errorf("%w: title and image are required", ErrValidation)
	}
	return s.bannerRepo.CreateBanner(banner)
}

func (s *catalogService) CreateOffer(actor models.Actor, offer *models.Offer) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can create offers", ErrForbidden)
	}
	if offer.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if offer.EndsAt.Before(offer.StartsAt) {
		return fmt.Errorf("%w: offer ends before it starts", ErrValidation)
	}
	return s.bannerRepo.CreateOffer(offer)
}
