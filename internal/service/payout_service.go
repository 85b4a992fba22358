package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carserve/internal/config"
	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/metrics"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type PayoutService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	alerter  domain.AdminAlerter
	cfg      config.PayoutConfig
	logger   *zerolog.Logger
}

func NewPayoutService(repo domain.Repository, eventBus domain.EventPublisher, alerter domain.AdminAlerter, cfg config.PayoutConfig, logger *zerolog.Logger) *PayoutService {
	if cfg.ProcessingFeePct <= 0 {
		cfg.ProcessingFeePct = models.DefaultPayoutFeePct
	}
	return &PayoutService{
		repo:     repo,
		eventBus: eventBus,
		alerter:  alerter,
		cfg:      cfg,
		logger:   logger,
	}
}

// RequestPayout opens a withdrawal for an approved dealer. The balance is
// only checked here; the debit happens when an admin completes the payout.
func (s *PayoutService) RequestPayout(ctx context.Context, dealerID, amount int64) (*models.DealerPayout, error) {
	if amount < s.cfg.MinAmount {
		return nil, ErrAmountBelowMinimum
	}

	profile, err := s.repo.GetDealerProfile(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsApproved {
		return nil, ErrDealerNotApproved
	}
	if profile.BankAccountNo == "" || profile.BankName == "" {
		return nil, ErrBankDetailsMissing
	}

	// Bank details are frozen into the payout so a later profile edit cannot
	// redirect money already in flight.
	snapshot, err := json.Marshal(map[string]string{
		"account_name": profile.BankAccountName,
		"account_no":   profile.BankAccountNo,
		"bank_name":    profile.BankName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot bank details: %w", err)
	}

	fee := pctOf(amount, s.cfg.ProcessingFeePct)
	payout := &models.DealerPayout{
		DealerID:      dealerID,
		Amount:        amount,
		ProcessingFee: fee,
		NetAmount:     amount - fee,
		Reference:     newReference("PAY", time.Now(), 8),
		BankSnapshot:  string(snapshot),
	}

	if err := s.repo.CreatePayoutRequest(ctx, payout); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventPayoutRequested, payout)
	s.alert(ctx, fmt.Sprintf("Payout %s requested: dealer %d, net %d", payout.Reference, dealerID, payout.NetAmount))
	return payout, nil
}

func (s *PayoutService) Approve(ctx context.Context, payoutID, adminID int64, notes string) error {
	return s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutPending, models.PayoutApproved, adminID, notes)
}

func (s *PayoutService) Reject(ctx context.Context, payoutID, adminID int64, notes string) error {
	if err := s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutPending, models.PayoutRejected, adminID, notes); err != nil {
		return err
	}

	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err == nil {
		enqueueNotification(ctx, s.repo, s.logger, payout.DealerID,
			"Payout rejected", fmt.Sprintf("Payout %s was rejected: %s", payout.Reference, notes), 0)
	}
	return nil
}

func (s *PayoutService) StartProcessing(ctx context.Context, payoutID, adminID int64) error {
	return s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutApproved, models.PayoutProcessing, adminID, "")
}

// Complete records the bank transfer as done and debits the dealer balance.
func (s *PayoutService) Complete(ctx context.Context, payoutID, adminID int64) error {
	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err != nil {
		return err
	}

	if err := s.repo.CompletePayout(ctx, payout, adminID); err != nil {
		return err
	}

	payout.Status = models.PayoutCompleted
	metrics.IncPayoutCompleted()
	s.publishEvent(events.EventPayoutCompleted, payout)
	enqueueNotification(ctx, s.repo, s.logger, payout.DealerID,
		"Payout completed", fmt.Sprintf("Payout %s for %d has been transferred.", payout.Reference, payout.NetAmount), 0)
	return nil
}

func (s *PayoutService) Fail(ctx context.Context, payoutID, adminID int64, notes string) error {
	return s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutProcessing, models.PayoutFailed, adminID, notes)
}

func (s *PayoutService) GetPayout(ctx context.Context, id int64) (*models.DealerPayout, error) {
	return s.repo.GetPayout(ctx, id)
}

func (s *PayoutService) ListDealerPayouts(ctx context.Context, dealerID int64) ([]*models.DealerPayout, error) {
	return s.repo.ListPayoutsByDealer(ctx, dealerID)
}

func (s *PayoutService) ListByStatus(ctx context.Context, status string) ([]*models.DealerPayout, error) {
	return s.repo.ListPayoutsByStatus(ctx, status)
}

func (s *PayoutService) Statement(ctx context.Context, dealerID int64) ([]*models.BalanceTransaction, error) {
	return s.repo.ListBalanceTransactions(ctx, dealerID)
}

// AdjustBalance applies a signed manual correction to a dealer balance.
func (s *PayoutService) AdjustBalance(ctx context.Context, dealerID, amount int64, description string) error {
	return s.repo.AdjustDealerBalance(ctx, dealerID, amount, description)
}

func (s *PayoutService) publishEvent(eventType string, payout *models.DealerPayout) {
	if s.eventBus == nil {
		return
	}

	payload := events.PayoutEventPayload{
		PayoutID:  payout.ID,
		DealerID:  payout.DealerID,
		Reference: payout.Reference,
		Amount:    payout.Amount,
		NetAmount: payout.NetAmount,
		Status:    payout.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("payout_id", payout.ID).Msg("publish event error")
	}
}

func (s *PayoutService) alert(ctx context.Context, text string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Alert(ctx, text); err != nil {
		s.logger.Warn().Err(err).Msg("admin alert error")
	}
}
