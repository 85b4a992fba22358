package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carserve/internal/config"
	"carserve/internal/database"
	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/export"
	"carserve/internal/logging"
	"carserve/internal/metrics"
	"carserve/internal/notifier"
	"carserve/internal/repository"
	"carserve/internal/service"
	"carserve/internal/sheets"
	"carserve/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create exports directory")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	holds := initHolds(redisClient, cfg, &logger)

	alerter, err := notifier.NewTelegramAlerter(cfg.Telegram, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, alerts degrade to logging")
		alerter, _ = notifier.NewTelegramAlerter(config.TelegramConfig{}, &logger)
	}

	eventBus := events.NewEventBus()
	subscribeExpiryAlerts(ctx, eventBus, alerter, &logger)

	bookingService := service.NewBookingService(db, holds, eventBus, cfg.Booking, cfg.Loyalty, &logger)

	dispatcher := worker.NewDispatcher(
		db,
		notifier.DefaultSenders(&logger),
		worker.RetryPolicy{
			MaxRetries:    cfg.Notifications.MaxRetries,
			InitialDelay:  2 * time.Second,
			MaxDelay:      5 * time.Minute,
			BackoffFactor: 2,
		},
		time.Duration(cfg.Notifications.PollInterval)*time.Second,
		cfg.Notifications.BatchSize,
		&logger,
	)
	go dispatcher.Run(ctx)

	sweeper := worker.NewSweeper(
		db,
		bookingService,
		time.Duration(cfg.Booking.SweepInterval)*time.Second,
		cfg.Booking.ReminderTime,
		&logger,
	)
	go sweeper.Run(ctx)

	go runDailyReports(ctx, db, cfg, &logger)

	logger.Info().Msg("worker started")
	<-ctx.Done()
	logger.Info().Msg("worker stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "worker-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}
	return redisClient
}

func initHolds(redisClient *redis.Client, cfg *config.Config, logger *zerolog.Logger) domain.HoldRepository {
	ttl := time.Duration(cfg.Booking.SlotHoldTTL) * time.Second
	fallback := repository.NewMemoryHoldRepository(ttl)
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisHoldRepository(redisClient, ttl)
	return repository.NewFailoverHoldRepository(primary, fallback, logger)
}

// subscribeExpiryAlerts pushes an operator alert whenever the sweeper expires
// a booking a dealer never answered.
func subscribeExpiryAlerts(ctx context.Context, eventBus *events.EventBus, alerter domain.AdminAlerter, logger *zerolog.Logger) {
	eventBus.Subscribe(events.EventBookingExpired, func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		text := fmt.Sprintf("Booking %s expired: dealer %d did not confirm in time", payload.Number, payload.DealerID)
		if err := alerter.Alert(ctx, text); err != nil {
			logger.Warn().Err(err).Msg("expiry alert failed")
		}
		return nil
	})
}

// runDailyReports writes yesterday's bookings and payouts to xlsx once a day
// and mirrors the bookings sheet when Google credentials are configured.
func runDailyReports(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) {
	exporter := export.NewExporter(db, cfg.Exports.Path, logger)
	sheetsService := initGoogleSheets(ctx, cfg, logger)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			end := now.UTC().Truncate(24 * time.Hour)
			start := end.AddDate(0, 0, -1)

			if _, err := exporter.ExportBookings(ctx, start, end); err != nil {
				logger.Error().Err(err).Msg("bookings export failed")
			}
			if _, err := exporter.ExportPayouts(ctx, start, end); err != nil {
				logger.Error().Err(err).Msg("payouts export failed")
			}

			if sheetsService != nil {
				bookings, err := db.ListBookingsByDateRange(ctx, start, end)
				if err != nil {
					logger.Error().Err(err).Msg("bookings load for sheets failed")
					continue
				}
				if err := sheetsService.UpdateBookingsSheet(ctx, bookings); err != nil {
					logger.Error().Err(err).Msg("sheets sync failed")
				}
			}
		}
	}
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *sheets.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingsSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := sheets.NewSheetsService(cfg.Google)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}
