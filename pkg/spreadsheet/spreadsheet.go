// Package spreadsheet reads event batches from, and writes booking exports to, xlsx workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"playverse/pkg/model"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet = "Events"
)

var (
	ErrMissingFields = errors.New("each event must have all required fields")
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// RowError locates an invalid value in an imported sheet.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var requiredColumns = []string{
	"name", "description", "date", "slot", "participantsLimit",
	"price", "venueName", "location", "sportsName",
}

// ExportHeaders is the header row of the bookings export.
var ExportHeaders = []string{
	"Event ID", "Event Name", "Sport", "Venue Name", "Skill Level", "Date", "Time",
	"Event Price", "Actual Price", "Payment Id", "Order Id", "Participant Name",
	"Participant Phone", "Participant Id", "Quantity", "Total Amount",
}

// ParseEvents reads the first sheet of a workbook whose first row names the
// event fields. Either every row is valid or no events are returned.
func ParseEvents(r io.Reader) ([]model.Event, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return []model.Event{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}

	events := make([]model.Event, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		for _, col := range requiredColumns {
			if get(col) == "" {
				return nil, ErrMissingFields
			}
		}

		line := n + 2
		date, err := parseDate(get("date"))
		if err != nil {
			return nil, &RowError{Row: line, Column: "date", Err: err}
		}
		limit, err := strconv.Atoi(get("participantsLimit"))
		if err != nil || limit <= 0 {
			return nil, &RowError{Row: line, Column: "participantsLimit", Err: fmt.Errorf("invalid limit %q", get("participantsLimit"))}
		}
		price, err := strconv.ParseFloat(get("price"), 64)
		if err != nil || price <= 0 {
			return nil, &RowError{Row: line, Column: "price", Err: fmt.Errorf("invalid price %q", get("price"))}
		}

		events = append(events, model.Event{
			Name:              get("name"),
			Description:       get("description"),
			Date:              date,
			Slot:              get("slot"),
			ParticipantsLimit: limit,
			Price:             price,
			VenueName:         get("venueName"),
			VenueImage:        get("venueImage"),
			Location:          get("location"),
			SportsName:        get("sportsName"),
			Participants:      []model.Participant{},
		})
	}

	return events, nil
}

// parseDate accepts an Excel serial day number or an ISO date and returns UTC midnight.
func parseDate(v string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteBookings writes one row per successful participant of every event.
func WriteBookings(w io.Writer, events []model.Event) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return err
	}

	row := 2
	for _, e := range events {
		for _, p := range e.SuccessfulParticipants() {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{
				e.ID.Hex(), e.Name, e.SportsName, e.VenueName, string(p.SkillLevel),
				e.Date, e.Slot, e.Price, e.ActualPrice, p.PaymentID, p.OrderID,
				p.Name, p.Phone, p.ID.Hex(), p.Quantity, p.Amount,
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return err
			}
			dateCell, _ := excelize.CoordinatesToCellName(6, row)
			if err := f.SetCellStyle(exportSheet, dateCell, dateCell, dateStyle); err != nil {
				return err
			}
			row++
		}
	}

	return f.Write(w)
}

// ExportFileName is events_<UTC timestamp>.xlsx.
func ExportFileName(now time.Time) string {
	return "events_" + now.UTC().Format("2006-01-02T15-04-05") + ".xlsx"
}
