package service

import (
	"context"
	"io"
	"time"

	"carserve/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateCustomer(ctx context.Context, a *models.Account, p *models.CustomerProfile) error {
	return m.Called(ctx, a, p).Error(0)
}
func (m *mockRepo) CreateDealer(ctx context.Context, a *models.Account, p *models.DealerProfile) error {
	return m.Called(ctx, a, p).Error(0)
}
func (m *mockRepo) CreateAdmin(ctx context.Context, a *models.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockRepo) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
func (m *mockRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
func (m *mockRepo) SetAccountActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerProfile), args.Error(1)
}
func (m *mockRepo) UpdateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetDealerProfile(ctx context.Context, accountID int64) (*models.DealerProfile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DealerProfile), args.Error(1)
}
func (m *mockRepo) SetDealerApproved(ctx context.Context, accountID int64, approved bool) error {
	return m.Called(ctx, accountID, approved).Error(0)
}
func (m *mockRepo) UpdateDealerBankDetails(ctx context.Context, accountID int64, accountName, accountNo, bankName string) error {
	return m.Called(ctx, accountID, accountName, accountNo, bankName).Error(0)
}
func (m *mockRepo) ListPendingDealers(ctx context.Context) ([]*models.DealerProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DealerProfile), args.Error(1)
}
func (m *mockRepo) RecordAdminAction(ctx context.Context, action *models.AdminAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}
func (m *mockRepo) ListAdminActions(ctx context.Context, targetKind string, targetID int64) ([]*models.AdminAction, error) {
	args := m.Called(ctx, targetKind, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminAction), args.Error(1)
}

func (m *mockRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockRepo) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockRepo) ListVehiclesByOwner(ctx context.Context, ownerID int64) ([]*models.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}
func (m *mockRepo) SetPrimaryVehicle(ctx context.Context, ownerID, vehicleID int64) error {
	return m.Called(ctx, ownerID, vehicleID).Error(0)
}
func (m *mockRepo) UpdateVehicleMileage(ctx context.Context, id, mileage int64) error {
	return m.Called(ctx, id, mileage).Error(0)
}
func (m *mockRepo) DeactivateVehicle(ctx context.Context, id, ownerID int64) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockRepo) SeedCategories(ctx context.Context, categories []models.ServiceCategory) error {
	return m.Called(ctx, categories).Error(0)
}
func (m *mockRepo) ListCategories(ctx context.Context) ([]*models.ServiceCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceCategory), args.Error(1)
}
func (m *mockRepo) GetCategoryByName(ctx context.Context, name string) (*models.ServiceCategory, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceCategory), args.Error(1)
}
func (m *mockRepo) CreateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) GetService(ctx context.Context, id int64) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockRepo) ListServicesByDealer(ctx context.Context, dealerID int64) ([]*models.Service, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}
func (m *mockRepo) ListActiveServicesByCategory(ctx context.Context, categoryID int64) ([]*models.Service, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}
func (m *mockRepo) SetServiceActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) UpdateServicePricing(ctx context.Context, id, basePrice, discountedPrice int64) error {
	return m.Called(ctx, id, basePrice, discountedPrice).Error(0)
}
func (m *mockRepo) SeedPolicies(ctx context.Context, policies []models.CancellationPolicy) error {
	return m.Called(ctx, policies).Error(0)
}
func (m *mockRepo) GetPolicy(ctx context.Context, id int64) (*models.CancellationPolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CancellationPolicy), args.Error(1)
}
func (m *mockRepo) GetDefaultPolicy(ctx context.Context) (*models.CancellationPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CancellationPolicy), args.Error(1)
}
func (m *mockRepo) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}
func (m *mockRepo) IncrementPromotionUse(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CountPromotionUsesByCustomer(ctx context.Context, promotionID, customerID int64) (int64, error) {
	args := m.Called(ctx, promotionID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CreateSlotTemplate(ctx context.Context, t *models.SlotTemplate) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockRepo) ListSlotTemplates(ctx context.Context, serviceID int64) ([]*models.SlotTemplate, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SlotTemplate), args.Error(1)
}
func (m *mockRepo) SetSlotTemplateActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) GenerateSlots(ctx context.Context, serviceID int64, days int, from time.Time) (int, error) {
	args := m.Called(ctx, serviceID, days, from)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) GetSlot(ctx context.Context, id int64) (*models.ServiceSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceSlot), args.Error(1)
}
func (m *mockRepo) ListSlotsByServiceDate(ctx context.Context, serviceID int64, date time.Time) ([]*models.ServiceSlot, error) {
	args := m.Called(ctx, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceSlot), args.Error(1)
}
func (m *mockRepo) GetAvailabilityForPeriod(ctx context.Context, serviceID int64, startDate time.Time, days int) ([]*models.Availability, error) {
	args := m.Called(ctx, serviceID, startDate, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Availability), args.Error(1)
}
func (m *mockRepo) BlockSlot(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}
func (m *mockRepo) UnblockSlot(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CreateBookingClaimingSlot(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) TransitionBooking(ctx context.Context, b *models.Booking, newStatus string, changedBy int64, reason string) error {
	args := m.Called(ctx, b, newStatus, changedBy, reason)
	if args.Error(0) == nil {
		b.Status = newStatus
		b.Version++
	}
	return args.Error(0)
}
func (m *mockRepo) ReleaseBookingSlot(ctx context.Context, slotID int64) error {
	return m.Called(ctx, slotID).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingByNumber(ctx context.Context, number string) (*models.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsByCustomer(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsByDealer(ctx context.Context, dealerID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListConfirmedForDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingHistory(ctx context.Context, bookingID int64) ([]*models.BookingStatusHistory, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingStatusHistory), args.Error(1)
}
func (m *mockRepo) SettleCompletedBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetPaymentByBooking(ctx context.Context, bookingID int64) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}
func (m *mockRepo) MarkPaymentCaptured(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) MarkPaymentFailed(ctx context.Context, id int64, note string) error {
	return m.Called(ctx, id, note).Error(0)
}
func (m *mockRepo) RefundPayment(ctx context.Context, id, amount int64) error {
	return m.Called(ctx, id, amount).Error(0)
}
func (m *mockRepo) CreatePayoutRequest(ctx context.Context, p *models.DealerPayout) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetPayout(ctx context.Context, id int64) (*models.DealerPayout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DealerPayout), args.Error(1)
}
func (m *mockRepo) UpdatePayoutStatus(ctx context.Context, id int64, fromStatus, toStatus string, adminID int64, notes string) error {
	return m.Called(ctx, id, fromStatus, toStatus, adminID, notes).Error(0)
}
func (m *mockRepo) CompletePayout(ctx context.Context, p *models.DealerPayout, adminID int64) error {
	return m.Called(ctx, p, adminID).Error(0)
}
func (m *mockRepo) ListPayoutsByDealer(ctx context.Context, dealerID int64) ([]*models.DealerPayout, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DealerPayout), args.Error(1)
}
func (m *mockRepo) ListPayoutsByStatus(ctx context.Context, status string) ([]*models.DealerPayout, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DealerPayout), args.Error(1)
}
func (m *mockRepo) ListPayoutsByDateRange(ctx context.Context, start, end time.Time) ([]*models.DealerPayout, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DealerPayout), args.Error(1)
}
func (m *mockRepo) AdjustDealerBalance(ctx context.Context, dealerID, amount int64, description string) error {
	return m.Called(ctx, dealerID, amount, description).Error(0)
}
func (m *mockRepo) ListBalanceTransactions(ctx context.Context, dealerID int64) ([]*models.BalanceTransaction, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceTransaction), args.Error(1)
}

func (m *mockRepo) ApplyLoyaltyPoints(ctx context.Context, customerID int64, txType string, points int64, description string, bookingID int64) (*models.LoyaltyTransaction, error) {
	args := m.Called(ctx, customerID, txType, points, description, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoyaltyTransaction), args.Error(1)
}
func (m *mockRepo) ListLoyaltyTransactions(ctx context.Context, customerID int64) ([]*models.LoyaltyTransaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoyaltyTransaction), args.Error(1)
}

func (m *mockRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *mockRepo) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]*models.Review, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) SetReviewPublished(ctx context.Context, id int64, published bool) error {
	return m.Called(ctx, id, published).Error(0)
}
func (m *mockRepo) RespondToReview(ctx context.Context, id, dealerID int64, response string) error {
	return m.Called(ctx, id, dealerID, response).Error(0)
}

func (m *mockRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) FetchDueNotifications(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *mockRepo) MarkNotificationSent(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) RescheduleNotification(ctx context.Context, id int64, lastError string, nextRetry time.Time) error {
	return m.Called(ctx, id, lastError, nextRetry).Error(0)
}
func (m *mockRepo) MarkNotificationRead(ctx context.Context, id, recipientID int64) error {
	return m.Called(ctx, id, recipientID).Error(0)
}
func (m *mockRepo) ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *mockRepo) CreateTicket(ctx context.Context, t *models.SupportTicket) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockRepo) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}
func (m *mockRepo) GetTicketByNumber(ctx context.Context, number string) (*models.SupportTicket, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}
func (m *mockRepo) UpdateTicketStatus(ctx context.Context, id int64, fromStatus, toStatus string) error {
	return m.Called(ctx, id, fromStatus, toStatus).Error(0)
}
func (m *mockRepo) AssignTicket(ctx context.Context, id, adminID int64) error {
	return m.Called(ctx, id, adminID).Error(0)
}
func (m *mockRepo) ListTicketsByUser(ctx context.Context, userID int64) ([]*models.SupportTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SupportTicket), args.Error(1)
}
func (m *mockRepo) ListOpenTickets(ctx context.Context) ([]*models.SupportTicket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SupportTicket), args.Error(1)
}
func (m *mockRepo) AddTicketMessage(ctx context.Context, msg *models.SupportMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockRepo) ListTicketMessages(ctx context.Context, ticketID int64) ([]*models.SupportMessage, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SupportMessage), args.Error(1)
}

type mockHolds struct {
	mock.Mock
}

func (m *mockHolds) PlaceHold(ctx context.Context, hold *models.SlotHold) error {
	return m.Called(ctx, hold).Error(0)
}
func (m *mockHolds) GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SlotHold), args.Error(1)
}
func (m *mockHolds) ReleaseHold(ctx context.Context, slotID, customerID int64) error {
	return m.Called(ctx, slotID, customerID).Error(0)
}
func (m *mockHolds) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockAlerter struct {
	mock.Mock
}

func (m *mockAlerter) Alert(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}
