package sheets

import (
	"context"
	"fmt"
	"os"

	"carserve/internal/config"
	"carserve/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// SheetsService mirrors bookings and payouts into two spreadsheets that the
// finance team works from. Rows are appended as events happen; the full
// rewrite is for manual resyncs.
type SheetsService struct {
	service         *sheetsapi.Service
	bookingsSheetID string
	payoutsSheetID  string
}

func NewSheetsService(cfg config.GoogleConfig) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &SheetsService{
		service:         srv,
		bookingsSheetID: cfg.BookingsSpreadSheetID,
		payoutsSheetID:  cfg.PayoutsSpreadSheetID,
	}, nil
}

func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, "Bookings!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}
	_, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, "Bookings!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) AppendPayout(ctx context.Context, payout *models.DealerPayout) error {
	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{payoutRowValues(payout)},
	}
	_, err := s.service.Spreadsheets.Values.Append(s.payoutsSheetID, "Payouts!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateBookingsSheet clears and rewrites the whole sheet.
func (s *SheetsService) UpdateBookingsSheet(ctx context.Context, bookings []*models.Booking) error {
	values := [][]interface{}{bookingHeaders()}
	for _, b := range bookings {
		values = append(values, bookingRowValues(b))
	}

	rangeData := fmt.Sprintf("Bookings!A1:L%d", len(values))
	valueRange := &sheetsapi.ValueRange{Values: values}
	_, err := s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func bookingHeaders() []interface{} {
	return []interface{}{
		"ID", "Number", "Customer", "Dealer", "Service", "Status",
		"Scheduled", "Total", "Platform Fee", "Dealer Amount", "Created", "Updated",
	}
}

func bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.Number,
		b.CustomerID,
		b.DealerID,
		b.ServiceID,
		b.Status,
		b.ScheduledAt.Format("2006-01-02 15:04"),
		b.Total,
		b.PlatformFee,
		b.DealerAmount,
		b.CreatedAt.Format("2006-01-02 15:04:05"),
		b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func payoutRowValues(p *models.DealerPayout) []interface{} {
	processed := ""
	if p.ProcessedAt != nil {
		processed = p.ProcessedAt.Format("2006-01-02 15:04:05")
	}
	return []interface{}{
		p.ID,
		p.Reference,
		p.DealerID,
		p.Status,
		p.Amount,
		p.ProcessingFee,
		p.NetAmount,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
		processed,
	}
}
