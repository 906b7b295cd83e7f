package repository

import (
	"storefront/internal/models"

	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ticket *models.SupportTicket) error
	GetByID(id uint) (*models.SupportTicket, error)
	ListByUser(userID uint, page, limit int) ([]models.SupportTicket, int64, error)
	List(filter TicketStatusFilter, page, limit int) ([]models.SupportTicket, int64, error)
	AddReply(reply *models.TicketReply) error
	UpdateStatus(id uint, status models.TicketStatus) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

func (r *ticketRepository) GetByID(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Preload("Replies", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByUser(userID uint, page, limit int) ([]models.SupportTicket, int64, error) {
	query := r.db.Model(&models.SupportTicket{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepository) List(filter TicketStatusFilter, page, limit int) ([]models.SupportTicket, int64, error) {
	query := r.db.Model(&models.SupportTicket{})

	if status, ok := filter.Value(); ok {
		query = query.Where("status = ?", string(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepository) AddReply(reply *models.TicketReply) error {
	return r.db.Create(reply).Error
}

func (r *ticketRepository) UpdateStatus(id uint, status models.TicketStatus) error {
	return r.db.Model(&models.SupportTicket{}).Where("id = ?", id).
		Update("status", string(status)).Error
}
