package services

import (
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type ReportService interface {
	SalesSummary(actor models.Actor, start, end time.Time) ([]repository.SalesRow, error)
	TopProducts(actor models.Actor, start, end time.Time, limit int) ([]repository.ProductRow, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

func (s *reportService) SalesSummary(actor models.Actor, start, end time.Time) ([]repository.SalesRow, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: reports are admin only", ErrForbidden)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	return s.orderRepo.SalesSummary(start, end)
}

func (s *reportService) TopProducts(actor models.Actor, start, end time.Time, limit int) ([]repository.ProductRow, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: reports are admin only", ErrForbidden)
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.orderRepo.TopProducts(start, end, limit)
}
