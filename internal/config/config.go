package config

import (
	"errors"
	"fmt"
	"os"

	"carserve/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig          `yaml:"app"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Monitoring    MonitoringConfig   `yaml:"monitoring"`
	Logging       LoggingConfig      `yaml:"logging"`
	API           APIConfig          `yaml:"api"`
	Booking       BookingConfig      `yaml:"booking"`
	Payouts       PayoutConfig       `yaml:"payouts"`
	Loyalty       LoyaltyConfig      `yaml:"loyalty"`
	Notifications NotificationConfig `yaml:"notifications"`
	Telegram      TelegramConfig     `yaml:"telegram"`
	Exports       ExportConfig       `yaml:"exports"`
	Google        GoogleConfig       `yaml:"google"`
	CatalogPath   string             `yaml:"catalog_path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	LogLevel          string `yaml:"log_level"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key   string `yaml:"key"`
	Extra string `yaml:"extra"`
	Name  string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	// Hours the dealer has to confirm before the sweeper expires a booking.
	DealerResponseHours int     `yaml:"dealer_response_hours"`
	MaxBookingDays      int     `yaml:"max_booking_days"`
	SweepInterval       int     `yaml:"sweep_interval_seconds"`
	ReminderTime        string  `yaml:"reminder_time"`
	RateLimitBookings   int     `yaml:"rate_limit_bookings"`
	RateLimitWindow     int     `yaml:"rate_limit_window"`
	SlotHoldTTL         int     `yaml:"slot_hold_ttl_seconds"`
	TaxPct              float64 `yaml:"tax_pct"`
}

type PayoutConfig struct {
	ProcessingFeePct float64 `yaml:"processing_fee_pct"`
	MinAmount        int64   `yaml:"min_amount"`
}

type LoyaltyConfig struct {
	// Points earned per 100 currency units spent.
	EarnRatePer100 int64 `yaml:"earn_rate_per_100"`
	// Currency value of one point in cents when redeemed.
	PointValue int64 `yaml:"point_value"`
	// Largest share of a booking total payable with points, percent.
	MaxRedeemPct float64 `yaml:"max_redeem_pct"`
}

type NotificationConfig struct {
	PollInterval int `yaml:"poll_interval_seconds"`
	BatchSize    int `yaml:"batch_size"`
	MaxRetries   int `yaml:"max_retries"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
	Enabled  bool   `yaml:"enabled"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	BookingsSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
	PayoutsSpreadSheetID  string `yaml:"payouts_spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.API.Enabled && c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram enabled but bot token is empty")
	}
	if c.Loyalty.MaxRedeemPct < 0 || c.Loyalty.MaxRedeemPct > 100 {
		return fmt.Errorf("invalid loyalty max_redeem_pct: %f", c.Loyalty.MaxRedeemPct)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if !c.API.Auth.Enabled && c.API.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.DealerResponseHours == 0 {
		c.Booking.DealerResponseHours = models.DefaultDealerResponseHours
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = 30
	}
	if c.Booking.SweepInterval == 0 {
		c.Booking.SweepInterval = 60
	}
	if c.Booking.ReminderTime == "" {
		c.Booking.ReminderTime = fmt.Sprintf("%02d:00", models.ReminderHour)
	}
	if c.Booking.RateLimitBookings == 0 {
		c.Booking.RateLimitBookings = models.RateLimitBookings
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Booking.SlotHoldTTL == 0 {
		c.Booking.SlotHoldTTL = models.SlotHoldTTL
	}

	if c.Payouts.ProcessingFeePct == 0 {
		c.Payouts.ProcessingFeePct = models.DefaultPayoutFeePct
	}
	if c.Payouts.MinAmount == 0 {
		c.Payouts.MinAmount = 50000
	}

	if c.Loyalty.EarnRatePer100 == 0 {
		c.Loyalty.EarnRatePer100 = 1
	}
	if c.Loyalty.PointValue == 0 {
		c.Loyalty.PointValue = 100
	}
	if c.Loyalty.MaxRedeemPct == 0 {
		c.Loyalty.MaxRedeemPct = 50
	}

	if c.Notifications.PollInterval == 0 {
		c.Notifications.PollInterval = 5
	}
	if c.Notifications.BatchSize == 0 {
		c.Notifications.BatchSize = 50
	}
	if c.Notifications.MaxRetries == 0 {
		c.Notifications.MaxRetries = 5
	}
}
