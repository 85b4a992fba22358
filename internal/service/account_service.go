package service

import (
	"context"
	"strings"

	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type AccountService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewAccountService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *AccountService {
	return &AccountService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *AccountService) RegisterCustomer(ctx context.Context, account *models.Account, profile *models.CustomerProfile) error {
	if strings.TrimSpace(account.Email) == "" {
		return ErrEmailRequired
	}

	if err := s.repo.CreateCustomer(ctx, account, profile); err != nil {
		return err
	}

	enqueueNotification(ctx, s.repo, s.logger, account.ID,
		"Welcome", "Your account is ready. Add a vehicle to book your first service.", 0)
	return nil
}

func (s *AccountService) RegisterDealer(ctx context.Context, account *models.Account, profile *models.DealerProfile) error {
	if err := s.repo.CreateDealer(ctx, account, profile); err != nil {
		return err
	}

	s.publishDealerEvent(events.EventDealerRegistered, account.ID, profile.BusinessName, false)
	return nil
}

// ApproveDealer clears a pending dealer for business and tells them so.
func (s *AccountService) ApproveDealer(ctx context.Context, accountID, adminID int64) error {
	if err := s.repo.SetDealerApproved(ctx, accountID, true); err != nil {
		return err
	}

	audit := &models.AdminAction{
		AdminID: adminID, Action: "dealer_approved",
		TargetKind: "account", TargetID: accountID,
	}
	if err := s.repo.RecordAdminAction(ctx, audit); err != nil {
		s.logger.Error().Err(err).Int64("account_id", accountID).Msg("failed to record admin action")
	}

	profile, err := s.repo.GetDealerProfile(ctx, accountID)
	if err == nil {
		s.publishDealerEvent(events.EventDealerApproved, accountID, profile.BusinessName, true)
	}

	enqueueNotification(ctx, s.repo, s.logger, accountID,
		"Dealer account approved", "You can now publish services and receive bookings.", 0)
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repo.GetAccountByEmail(ctx, email)
}

func (s *AccountService) DeactivateAccount(ctx context.Context, id int64) error {
	return s.repo.SetAccountActive(ctx, id, false)
}

func (s *AccountService) GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error) {
	return s.repo.GetCustomerProfile(ctx, accountID)
}

func (s *AccountService) UpdateCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error {
	return s.repo.UpdateCustomerProfile(ctx, profile)
}

func (s *AccountService) GetDealerProfile(ctx context.Context, accountID int64) (*models.DealerProfile, error) {
	return s.repo.GetDealerProfile(ctx, accountID)
}

func (s *AccountService) UpdateBankDetails(ctx context.Context, accountID int64, accountName, accountNo, bankName string) error {
	return s.repo.UpdateDealerBankDetails(ctx, accountID, accountName, accountNo, bankName)
}

func (s *AccountService) ListPendingDealers(ctx context.Context) ([]*models.DealerProfile, error) {
	return s.repo.ListPendingDealers(ctx)
}

func (s *AccountService) publishDealerEvent(eventType string, accountID int64, businessName string, approved bool) {
	if s.eventBus == nil {
		return
	}

	payload := events.DealerEventPayload{
		AccountID:    accountID,
		BusinessName: businessName,
		Approved:     approved,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("account_id", accountID).Msg("publish event error")
	}
}
