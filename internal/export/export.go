package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"carserve/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Store is the slice of the repository the exporter reads from.
type Store interface {
	ListBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	ListPayoutsByDateRange(ctx context.Context, start, end time.Time) ([]*models.DealerPayout, error)
}

// Exporter writes bookings and payouts into xlsx files for the back office.
type Exporter struct {
	store  Store
	path   string
	logger zerolog.Logger
}

func NewExporter(store Store, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		path:   path,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

func (e *Exporter) ExportBookings(ctx context.Context, start, end time.Time) (string, error) {
	bookings, err := e.store.ListBookingsByDateRange(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load bookings for export: %w", err)
	}

	headers := []string{
		"Number", "Status", "Scheduled", "Service amount", "Discount",
		"Tax", "Total", "Platform fee", "Dealer amount",
	}
	rows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []interface{}{
			b.Number, b.Status, b.ScheduledAt.Format("2006-01-02 15:04"),
			money(b.ServiceAmount), money(b.Discount), money(b.Tax),
			money(b.Total), money(b.PlatformFee), money(b.DealerAmount),
		})
	}

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	return e.writeSheet("Bookings", fileName, start, end, headers, rows)
}

func (e *Exporter) ExportPayouts(ctx context.Context, start, end time.Time) (string, error) {
	payouts, err := e.store.ListPayoutsByDateRange(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load payouts for export: %w", err)
	}

	headers := []string{
		"Reference", "Dealer", "Status", "Amount", "Fee", "Net", "Requested", "Processed",
	}
	rows := make([][]interface{}, 0, len(payouts))
	for _, p := range payouts {
		processed := ""
		if p.ProcessedAt != nil {
			processed = p.ProcessedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{
			p.Reference, p.DealerID, p.Status,
			money(p.Amount), money(p.ProcessingFee), money(p.NetAmount),
			p.CreatedAt.Format("2006-01-02 15:04"), processed,
		})
	}

	fileName := fmt.Sprintf("payouts_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	return e.writeSheet("Payouts", fileName, start, end, headers, rows)
}

func (e *Exporter) writeSheet(sheetName, fileName string, start, end time.Time, headers []string, rows [][]interface{}) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		start.Format("2006-01-02"), end.Format("2006-01-02")))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", lastCol, 18)
	_ = f.DeleteSheet("Sheet1")

	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("failed to save export file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(rows)).Msg("export written")
	return filePath, nil
}

func money(cents int64) float64 {
	return float64(cents) / 100
}
