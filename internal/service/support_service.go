package service

import (
	"context"
	"fmt"
	"time"

	"carserve/internal/database"
	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type SupportService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	alerter  domain.AdminAlerter
	logger   *zerolog.Logger
}

func NewSupportService(repo domain.Repository, eventBus domain.EventPublisher, alerter domain.AdminAlerter, logger *zerolog.Logger) *SupportService {
	return &SupportService{
		repo:     repo,
		eventBus: eventBus,
		alerter:  alerter,
		logger:   logger,
	}
}

// OpenTicket files a new support request. Urgent and high priority tickets
// additionally page the operators.
func (s *SupportService) OpenTicket(ctx context.Context, ticket *models.SupportTicket) error {
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	}
	ticket.Number = newReference("T", time.Now(), 4)

	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return err
	}

	s.publishEvent(events.EventTicketOpened, ticket)
	if ticket.Priority == models.PriorityUrgent || ticket.Priority == models.PriorityHigh {
		s.alert(ctx, fmt.Sprintf("Ticket %s (%s): %s", ticket.Number, ticket.Priority, ticket.Subject))
	}
	return nil
}

// Reply appends a message to an open conversation.
func (s *SupportService) Reply(ctx context.Context, ticketID, senderID int64, body string) error {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == models.TicketClosed {
		return database.ErrInvalidTransition
	}

	message := &models.SupportMessage{
		TicketID: ticketID,
		SenderID: senderID,
		Body:     body,
	}
	if err := s.repo.AddTicketMessage(ctx, message); err != nil {
		return err
	}

	s.publishEvent(events.EventTicketUpdated, ticket)
	if senderID != ticket.UserID {
		enqueueNotification(ctx, s.repo, s.logger, ticket.UserID,
			"Support replied", fmt.Sprintf("Ticket %s has a new reply.", ticket.Number), ticket.BookingID)
	}
	return nil
}

// Assign puts a ticket on an admin's desk and marks it in progress.
func (s *SupportService) Assign(ctx context.Context, ticketID, adminID int64) error {
	return s.repo.AssignTicket(ctx, ticketID, adminID)
}

func (s *SupportService) Resolve(ctx context.Context, ticketID int64) error {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTicketStatus(ctx, ticketID, ticket.Status, models.TicketResolved); err != nil {
		return err
	}

	enqueueNotification(ctx, s.repo, s.logger, ticket.UserID,
		"Ticket resolved", fmt.Sprintf("Ticket %s has been resolved. Reply to reopen the conversation.", ticket.Number), ticket.BookingID)
	return nil
}

func (s *SupportService) Close(ctx context.Context, ticketID int64) error {
	return s.repo.UpdateTicketStatus(ctx, ticketID, models.TicketResolved, models.TicketClosed)
}

func (s *SupportService) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	return s.repo.GetTicket(ctx, id)
}

func (s *SupportService) GetTicketByNumber(ctx context.Context, number string) (*models.SupportTicket, error) {
	return s.repo.GetTicketByNumber(ctx, number)
}

func (s *SupportService) ListUserTickets(ctx context.Context, userID int64) ([]*models.SupportTicket, error) {
	return s.repo.ListTicketsByUser(ctx, userID)
}

func (s *SupportService) Queue(ctx context.Context) ([]*models.SupportTicket, error) {
	return s.repo.ListOpenTickets(ctx)
}

func (s *SupportService) Conversation(ctx context.Context, ticketID int64) ([]*models.SupportMessage, error) {
	return s.repo.ListTicketMessages(ctx, ticketID)
}

func (s *SupportService) publishEvent(eventType string, ticket *models.SupportTicket) {
	if s.eventBus == nil {
		return
	}

	payload := events.TicketEventPayload{
		TicketID: ticket.ID,
		Number:   ticket.Number,
		UserID:   ticket.UserID,
		Status:   ticket.Status,
		Priority: ticket.Priority,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Int64("ticket_id", ticket.ID).Msg("publish event error")
	}
}

func (s *SupportService) alert(ctx context.Context, text string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Alert(ctx, text); err != nil {
		s.logger.Warn().Err(err).Msg("admin alert error")
	}
}
