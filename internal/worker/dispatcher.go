package worker

import (
	"context"
	"fmt"
	"time"

	"carserve/internal/domain"
	"carserve/internal/metrics"

	"github.com/rs/zerolog"
)

// Dispatcher drains the notifications table and delivers each row over its
// channel. The table itself is the queue: pending rows with a due retry time
// are fetched in batches, and retry state lives on the row.
type Dispatcher struct {
	repo         domain.NotificationRepository
	senders      map[string]domain.ChannelSender
	retry        RetryPolicy
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
}

func NewDispatcher(repo domain.NotificationRepository, senders []domain.ChannelSender, retry RetryPolicy, pollInterval time.Duration, batchSize int, logger *zerolog.Logger) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	byChannel := make(map[string]domain.ChannelSender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}

	return &Dispatcher{
		repo:         repo,
		senders:      byChannel,
		retry:        retry,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info().Dur("poll_interval", d.pollInterval).Msg("dispatcher started")
	defer d.logger.Info().Msg("dispatcher stopped")

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.ProcessBatch(ctx, time.Now()); err != nil {
				d.logger.Error().Err(err).Msg("process batch error")
			}
		}
	}
}

// ProcessBatch delivers one batch of due notifications and returns how many
// were sent.
func (d *Dispatcher) ProcessBatch(ctx context.Context, now time.Time) (int, error) {
	due, err := d.repo.FetchDueNotifications(ctx, now, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due notifications: %w", err)
	}

	sent := 0
	for _, n := range due {
		sender, ok := d.senders[n.Channel]
		if !ok {
			d.giveUp(ctx, n.ID, n.Channel, fmt.Sprintf("no sender for channel %q", n.Channel))
			continue
		}

		if err := sender.Send(ctx, n); err != nil {
			d.retryOrGiveUp(ctx, n.ID, n.Channel, int(n.RetryCount), err, now)
			continue
		}

		if err := d.repo.MarkNotificationSent(ctx, n.ID); err != nil {
			d.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark sent error")
			continue
		}
		metrics.IncNotificationSent(n.Channel, "sent")
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) retryOrGiveUp(ctx context.Context, id int64, channel string, retryCount int, cause error, now time.Time) {
	attempt := retryCount + 1
	if d.retry.Exhausted(attempt) {
		d.giveUp(ctx, id, channel, cause.Error())
		return
	}

	next := now.Add(d.retry.NextDelay(attempt))
	if err := d.repo.RescheduleNotification(ctx, id, cause.Error(), next); err != nil {
		d.logger.Error().Err(err).Int64("notification_id", id).Msg("reschedule error")
		return
	}
	metrics.IncNotificationSent(channel, "retry")
	d.logger.Warn().Err(cause).Int64("notification_id", id).Time("next_retry", next).Msg("delivery failed, rescheduled")
}

// giveUp dead-letters the row: a zero retry time marks it failed for good.
func (d *Dispatcher) giveUp(ctx context.Context, id int64, channel, cause string) {
	if err := d.repo.RescheduleNotification(ctx, id, cause, time.Time{}); err != nil {
		d.logger.Error().Err(err).Int64("notification_id", id).Msg("dead letter error")
		return
	}
	metrics.IncNotificationSent(channel, "failed")
	d.logger.Error().Str("cause", cause).Int64("notification_id", id).Msg("delivery abandoned")
}
