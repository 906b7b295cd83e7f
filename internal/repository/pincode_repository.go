package repository

import (
	"storefront/internal/models"

	"gorm.io/gorm"
)

type PincodeRepository interface {
	Create(pincode *models.Pincode) error
	GetByCode(code string) (*models.Pincode, error)
	List(page, limit int) ([]models.Pincode, int64, error)
	Update(pincode *models.Pincode) error
}

type pincodeRepository struct {
	db *gorm.DB
}

func NewPincodeRepository(db *gorm.DB) PincodeRepository {
	return &pincodeRepository{db: db}
}

func (r *pincodeRepository) Create(pincode *models.Pincode) error {
	return r.db.Create(pincode).Error
}

func (r *pincodeRepository) GetByCode(code string) (*models.Pincode, error) {
	var pincode models.Pincode
	err := r.db.Preload("Slots").Where("code = ?", code).First(&pincode).Error
	if err != nil {
		return nil, err
	}
	return &pincode, nil
}

func (r *pincodeRepository) List(page, limit int) ([]models.Pincode, int64, error) {
	var total int64
	if err := r.db.Model(&models.Pincode{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pincodes []models.Pincode
	err := r.db.Preload("Slots").Order("code ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&pincodes).Error
	return pincodes, total, err
}

func (r *pincodeRepository) Update(pincode *models.Pincode) error {
	return r.db.Save(pincode).Error
}
