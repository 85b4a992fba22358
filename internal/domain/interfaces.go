package domain

import (
	"context"
	"time"

	"carserve/internal/models"
)

type AccountRepository interface {
	CreateCustomer(ctx context.Context, account *models.Account, profile *models.CustomerProfile) error
	CreateDealer(ctx context.Context, account *models.Account, profile *models.DealerProfile) error
	CreateAdmin(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	SetAccountActive(ctx context.Context, id int64, active bool) error
	GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error)
	UpdateCustomerProfile(ctx context.Context, profile *models.CustomerProfile) error
	GetDealerProfile(ctx context.Context, accountID int64) (*models.DealerProfile, error)
	SetDealerApproved(ctx context.Context, accountID int64, approved bool) error
	UpdateDealerBankDetails(ctx context.Context, accountID int64, accountName, accountNo, bankName string) error
	ListPendingDealers(ctx context.Context) ([]*models.DealerProfile, error)
	RecordAdminAction(ctx context.Context, action *models.AdminAction) error
	ListAdminActions(ctx context.Context, targetKind string, targetID int64) ([]*models.AdminAction, error)
}

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error)
	ListVehiclesByOwner(ctx context.Context, ownerID int64) ([]*models.Vehicle, error)
	SetPrimaryVehicle(ctx context.Context, ownerID, vehicleID int64) error
	UpdateVehicleMileage(ctx context.Context, id, mileage int64) error
	DeactivateVehicle(ctx context.Context, id, ownerID int64) error
}

type CatalogRepository interface {
	SeedCategories(ctx context.Context, categories []models.ServiceCategory) error
	ListCategories(ctx context.Context) ([]*models.ServiceCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*models.ServiceCategory, error)
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id int64) (*models.Service, error)
	ListServicesByDealer(ctx context.Context, dealerID int64) ([]*models.Service, error)
	ListActiveServicesByCategory(ctx context.Context, categoryID int64) ([]*models.Service, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error
	UpdateServicePricing(ctx context.Context, id, basePrice, discountedPrice int64) error
	SeedPolicies(ctx context.Context, policies []models.CancellationPolicy) error
	GetPolicy(ctx context.Context, id int64) (*models.CancellationPolicy, error)
	GetDefaultPolicy(ctx context.Context) (*models.CancellationPolicy, error)
	CreatePromotion(ctx context.Context, promotion *models.Promotion) error
	GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	IncrementPromotionUse(ctx context.Context, id int64) error
	CountPromotionUsesByCustomer(ctx context.Context, promotionID, customerID int64) (int64, error)
}

type SlotRepository interface {
	CreateSlotTemplate(ctx context.Context, template *models.SlotTemplate) error
	ListSlotTemplates(ctx context.Context, serviceID int64) ([]*models.SlotTemplate, error)
	SetSlotTemplateActive(ctx context.Context, id int64, active bool) error
	GenerateSlots(ctx context.Context, serviceID int64, days int, from time.Time) (int, error)
	GetSlot(ctx context.Context, id int64) (*models.ServiceSlot, error)
	ListSlotsByServiceDate(ctx context.Context, serviceID int64, date time.Time) ([]*models.ServiceSlot, error)
	GetAvailabilityForPeriod(ctx context.Context, serviceID int64, startDate time.Time, days int) ([]*models.Availability, error)
	BlockSlot(ctx context.Context, id int64, reason string) error
	UnblockSlot(ctx context.Context, id int64) error
}

type BookingRepository interface {
	CreateBookingClaimingSlot(ctx context.Context, booking *models.Booking) error
	TransitionBooking(ctx context.Context, booking *models.Booking, newStatus string, changedBy int64, reason string) error
	ReleaseBookingSlot(ctx context.Context, slotID int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByNumber(ctx context.Context, number string) (*models.Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID int64) ([]*models.Booking, error)
	ListBookingsByDealer(ctx context.Context, dealerID int64) ([]*models.Booking, error)
	ListExpiredPending(ctx context.Context, now time.Time) ([]*models.Booking, error)
	ListConfirmedForDate(ctx context.Context, date time.Time) ([]*models.Booking, error)
	ListBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetBookingHistory(ctx context.Context, bookingID int64) ([]*models.BookingStatusHistory, error)
	SettleCompletedBooking(ctx context.Context, booking *models.Booking) error
}

type FinanceRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByBooking(ctx context.Context, bookingID int64) (*models.Payment, error)
	MarkPaymentCaptured(ctx context.Context, id int64) error
	MarkPaymentFailed(ctx context.Context, id int64, note string) error
	RefundPayment(ctx context.Context, id, amount int64) error
	CreatePayoutRequest(ctx context.Context, payout *models.DealerPayout) error
	GetPayout(ctx context.Context, id int64) (*models.DealerPayout, error)
	UpdatePayoutStatus(ctx context.Context, id int64, fromStatus, toStatus string, adminID int64, notes string) error
	CompletePayout(ctx context.Context, payout *models.DealerPayout, adminID int64) error
	ListPayoutsByDealer(ctx context.Context, dealerID int64) ([]*models.DealerPayout, error)
	ListPayoutsByStatus(ctx context.Context, status string) ([]*models.DealerPayout, error)
	ListPayoutsByDateRange(ctx context.Context, start, end time.Time) ([]*models.DealerPayout, error)
	AdjustDealerBalance(ctx context.Context, dealerID, amount int64, description string) error
	ListBalanceTransactions(ctx context.Context, dealerID int64) ([]*models.BalanceTransaction, error)
}

type LoyaltyRepository interface {
	ApplyLoyaltyPoints(ctx context.Context, customerID int64, txType string, points int64, description string, bookingID int64) (*models.LoyaltyTransaction, error)
	ListLoyaltyTransactions(ctx context.Context, customerID int64) ([]*models.LoyaltyTransaction, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error)
	ListReviewsByDealer(ctx context.Context, dealerID int64) ([]*models.Review, error)
	SetReviewPublished(ctx context.Context, id int64, published bool) error
	RespondToReview(ctx context.Context, id, dealerID int64, response string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	FetchDueNotifications(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error)
	MarkNotificationSent(ctx context.Context, id int64) error
	RescheduleNotification(ctx context.Context, id int64, lastError string, nextRetry time.Time) error
	MarkNotificationRead(ctx context.Context, id, recipientID int64) error
	ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error)
}

type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
	GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error)
	GetTicketByNumber(ctx context.Context, number string) (*models.SupportTicket, error)
	UpdateTicketStatus(ctx context.Context, id int64, fromStatus, toStatus string) error
	AssignTicket(ctx context.Context, id, adminID int64) error
	ListTicketsByUser(ctx context.Context, userID int64) ([]*models.SupportTicket, error)
	ListOpenTickets(ctx context.Context) ([]*models.SupportTicket, error)
	AddTicketMessage(ctx context.Context, message *models.SupportMessage) error
	ListTicketMessages(ctx context.Context, ticketID int64) ([]*models.SupportMessage, error)
}

// Repository is the full persistence surface, satisfied by *database.DB.
type Repository interface {
	AccountRepository
	VehicleRepository
	CatalogRepository
	SlotRepository
	BookingRepository
	FinanceRepository
	LoyaltyRepository
	ReviewRepository
	NotificationRepository
	SupportRepository
}

// HoldRepository keeps checkout slot holds and per-user rate limits.
type HoldRepository interface {
	PlaceHold(ctx context.Context, hold *models.SlotHold) error
	GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error)
	ReleaseHold(ctx context.Context, slotID, customerID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ChannelSender delivers one notification over a concrete channel.
type ChannelSender interface {
	Send(ctx context.Context, notification *models.Notification) error
	Channel() string
}

// AdminAlerter pushes operational alerts to the platform operators.
type AdminAlerter interface {
	Alert(ctx context.Context, text string) error
}
