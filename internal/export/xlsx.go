package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/invalid8th/bookingbot/internal/booking"
)

// Spreadsheet renders the finalized bookings as an xlsx report for the
// operator's /export command.
func Spreadsheet(bookings []booking.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Name", "Handle", "Category", "Units", "Date", "Start", "End", "Location", "Base £", "Travel £", "Total £"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, b := range bookings {
		values := []any{
			b.Name,
			b.Handle,
			b.Category().Label(),
			unitsOf(b),
			b.DateLabel,
			b.Start.Format("15:04"),
			b.End.Format("15:04"),
			b.Location,
			b.BasePrice,
			feeOf(b),
			totalOf(b),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// SpreadsheetName stamps the report with the generation date.
func SpreadsheetName(now time.Time) string {
	return fmt.Sprintf("bookings-%s.xlsx", now.Format("2006-01-02"))
}

func unitsOf(b booking.Booking) int {
	if b.Quantity == nil {
		return 0
	}
	return b.Quantity.Units()
}

func feeOf(b booking.Booking) any {
	if b.TravelFee == nil {
		return ""
	}
	return *b.TravelFee
}

func totalOf(b booking.Booking) any {
	total, ok := b.Total()
	if !ok {
		return ""
	}
	return total
}
