package services

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type TicketService interface {
	Create(actor models.Actor, subject, message string) (*models.SupportTicket, error)
	Get(actor models.Actor, id uint) (*models.SupportTicket, error)
	MyTickets(actor models.Actor, page, limit int) ([]models.SupportTicket, int64, error)
	List(actor models.Actor, filter repository.TicketStatusFilter, page, limit int) ([]models.SupportTicket, int64, error)
	Reply(actor models.Actor, ticketID uint, message string) (*models.SupportTicket, error)
	UpdateStatus(actor models.Actor, ticketID uint, status models.TicketStatus) error
}

type ticketService struct {
	ticketRepo repository.TicketRepository
}

func NewTicketService(ticketRepo repository.TicketRepository) TicketService {
	return &ticketService{ticketRepo: ticketRepo}
}

func (s *ticketService) Create(actor models.Actor, subject, message string) (*models.SupportTicket, error) {
	if subject == "" || message == "" {
		return nil, fmt.Errorf("%w: subject and message are required", ErrValidation)
	}

	ticket := &models.SupportTicket{
		UserID:  actor.UserID,
		Subject: subject,
		Message: message,
		Status:  string(models.TicketOpen),
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

func (s *ticketService) Get(actor models.Actor, id uint) (*models.SupportTicket, error) {
	ticket, err := s.ticketRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if !actor.IsAdmin() && ticket.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: not your ticket", ErrForbidden)
	}
	return ticket, nil
}

func (s *ticketService) MyTickets(actor models.Actor, page, limit int) ([]models.SupportTicket, int64, error) {
	return s.ticketRepo.ListByUser(actor.UserID, page, limit)
}

func (s *ticketService) List(actor models.Actor, filter repository.TicketStatusFilter, page, limit int) ([]models.SupportTicket, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: ticket queue is admin only", ErrForbidden)
	}
	return s.ticketRepo.List(filter, page, limit)
}

func (s *ticketService) Reply(actor models.Actor, ticketID uint, message string) (*models.SupportTicket, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	ticket, err := s.Get(actor, ticketID)
	if err != nil {
		return nil, err
	}

	reply := &models.TicketReply{
		TicketID:  ticket.ID,
		AuthorID:  actor.UserID,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.ticketRepo.AddReply(reply); err != nil {
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}

	// An admin reply moves an open ticket into in_progress.
	if actor.IsAdmin() && ticket.Status == string(models.TicketOpen) {
		if err := s.ticketRepo.UpdateStatus(ticket.ID, models.TicketInProgress); err != nil {
			return nil, fmt.Errorf("failed to update ticket status: %w", err)
		}
	}

	return s.ticketRepo.GetByID(ticket.ID)
}

func (s *ticketService) UpdateStatus(actor models.Actor, ticketID uint, status models.TicketStatus) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can update ticket status", ErrForbidden)
	}
	switch status {
	case models.TicketOpen, models.TicketInProgress, models.TicketResolved, models.TicketClosed:
	default:
		return fmt.Errorf("%w: unknown ticket status %q", ErrValidation, status)
	}

	if _, err := s.ticketRepo.GetByID(ticketID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
		}
		return fmt.Errorf("failed to load ticket: %w", err)
	}
	return s.ticketRepo.UpdateStatus(ticketID, status)
}
