package worker

import (
	"context"
	"fmt"
	"time"

	"carserve/internal/models"

	"github.com/rs/zerolog"
)

// BookingExpirer is the slice of the booking service the sweeper needs.
type BookingExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// ReminderStore is the slice of the repository the reminder run needs.
type ReminderStore interface {
	ListConfirmedForDate(ctx context.Context, date time.Time) ([]*models.Booking, error)
	GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error)
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// Sweeper expires pending bookings whose confirmation deadline passed and
// sends the morning reminders for the day's confirmed bookings.
type Sweeper struct {
	repo          ReminderStore
	bookings      BookingExpirer
	sweepInterval time.Duration
	reminderTime  string // "09:00"
	lastReminder  string // date of the last reminder run, yyyy-mm-dd
	logger        zerolog.Logger
}

func NewSweeper(repo ReminderStore, bookings BookingExpirer, sweepInterval time.Duration, reminderTime string, logger *zerolog.Logger) *Sweeper {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	if reminderTime == "" {
		reminderTime = "09:00"
	}
	return &Sweeper{
		repo:          repo,
		bookings:      bookings,
		sweepInterval: sweepInterval,
		reminderTime:  reminderTime,
		logger:        logger.With().Str("component", "sweeper").Logger(),
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().Dur("sweep_interval", s.sweepInterval).Str("reminder_time", s.reminderTime).Msg("sweeper started")
	defer s.logger.Info().Msg("sweeper stopped")

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if err := s.Sweep(ctx, now); err != nil {
				s.logger.Error().Err(err).Msg("sweep error")
			}
			if s.reminderDue(now) {
				if err := s.SendReminders(ctx, now); err != nil {
					s.logger.Error().Err(err).Msg("reminders error")
				}
			}
		}
	}
}

// Sweep expires overdue pending bookings.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) error {
	expired, err := s.bookings.ExpireOverdue(ctx, now)
	if err != nil {
		return err
	}
	if expired > 0 {
		s.logger.Info().Int("expired", expired).Msg("expired overdue bookings")
	}
	return nil
}

// SendReminders queues one reminder per booking confirmed for tomorrow.
func (s *Sweeper) SendReminders(ctx context.Context, now time.Time) error {
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	confirmed, err := s.repo.ListConfirmedForDate(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to list confirmed bookings: %w", err)
	}

	for _, booking := range confirmed {
		channel := models.ChannelEmail
		if profile, err := s.repo.GetCustomerProfile(ctx, booking.CustomerID); err == nil && profile.NotifyVia != "" {
			channel = profile.NotifyVia
		}
		notification := &models.Notification{
			RecipientID: booking.CustomerID,
			Title:       "Service reminder",
			Message:     fmt.Sprintf("Booking %s is scheduled tomorrow at %s.", booking.Number, booking.ScheduledAt.Format("15:04")),
			Channel:     channel,
			BookingID:   booking.ID,
		}
		if err := s.repo.CreateNotification(ctx, notification); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("queue reminder error")
		}
	}

	s.lastReminder = now.Format("2006-01-02")
	if len(confirmed) > 0 {
		s.logger.Info().Int("reminders", len(confirmed)).Msg("queued reminders")
	}
	return nil
}

// reminderDue reports whether the daily reminder run should fire: past the
// configured wall-clock time and not yet run today.
func (s *Sweeper) reminderDue(now time.Time) bool {
	if s.lastReminder == now.Format("2006-01-02") {
		return false
	}
	return now.Format("15:04") >= s.reminderTime
}
