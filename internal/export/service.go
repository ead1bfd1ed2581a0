package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for
// travel expense reports.
type Service struct {
	travels  repository.TravelRepository
	receipts repository.ReceiptRepository
	logger   *slog.Logger
}

func NewService(travels repository.TravelRepository, receipts repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{travels: travels, receipts: receipts, logger: logger}
}

// ExportTravelXLSX returns an XLSX workbook (as bytes) with one detail row
// per receipt plus a per-category summary block.
func (s *Service) ExportTravelXLSX(ctx context.Context, travelID uuid.UUID) ([]byte, error) {
	start := time.Now()

	travel, err := s.travels.GetByID(ctx, travelID)
	if err != nil {
		return nil, fmt.Errorf("load travel: %w", err)
	}
	recs, err := s.receipts.ListByTravel(ctx, travelID)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Reisekosten"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Debug("export.default_sheet", "error", err)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	// Cover block
	write(1, 1, "Employee")
	write(2, 1, travel.EmployeeName)
	write(1, 2, "Destination")
	write(2, 2, fmt.Sprintf("%s, %s", travel.DestinationCity, travel.DestinationCountry))
	write(1, 3, "Period")
	write(2, 3, fmt.Sprintf("%s - %s", travel.StartAt.Format("2006-01-02"), travel.EndAt.Format("2006-01-02")))
	write(1, 4, "Purpose")
	write(2, 4, travel.Purpose)
	write(1, 5, "Status")
	write(2, 5, string(travel.Status))
	if travel.CostCenter != nil {
		write(1, 6, "Cost Center")
		write(2, 6, *travel.CostCenter)
	}

	headers := []string{
		"Date",
		"Merchant",
		"Category",
		"Amount",
		"Currency",
		"VAT",
		"Payment Method",
		"Invoice No.",
		"Verified",
	}
	headerRow := 8
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	totals := map[constants.ExpenseCategory]decimal.Decimal{}
	grand := decimal.Zero

	row := headerRow + 1
	for _, r := range recs {
		if r.Date != nil {
			write(1, row, r.Date.Format("2006-01-02"))
		}
		if r.Merchant != nil {
			write(2, row, truncate(*r.Merchant, 60))
		}
		category := constants.CategoryOther
		if r.Category != nil {
			category = *r.Category
		}
		write(3, row, string(category))
		if r.Amount != nil {
			write(4, row, r.Amount.StringFixed(2))
			totals[category] = totals[category].Add(*r.Amount)
			grand = grand.Add(*r.Amount)
		}
		if r.Currency != nil {
			write(5, row, *r.Currency)
		}
		if r.VAT != nil {
			write(6, row, r.VAT.StringFixed(2))
		}
		if r.PaymentMethod != nil {
			write(7, row, *r.PaymentMethod)
		}
		if r.InvoiceNumber != nil {
			write(8, row, *r.InvoiceNumber)
		}
		write(9, row, r.Verified)
		row++
	}

	// Summary block
	row++
	write(1, row, "Summary")
	row++
	for _, category := range constants.CategoryPriority {
		if sum, ok := totals[category]; ok {
			write(1, row, string(category))
			write(4, row, sum.StringFixed(2))
			row++
		}
	}
	if sum, ok := totals[constants.CategoryOther]; ok {
		write(1, row, string(constants.CategoryOther))
		write(4, row, sum.StringFixed(2))
		row++
	}
	write(1, row, "Total")
	write(4, row, grand.StringFixed(2))

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "F", 12)
	_ = f.SetColWidth(sheet, "G", "H", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"travel_id", travelID.String(),
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
