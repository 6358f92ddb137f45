package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/dexabrain/event-backend/internal/models"
)

// Sheets implements Store against a Google Spreadsheet. Refs are 1-based
// sheet row numbers; data starts at row 2 below the header row.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheets creates a sheets-backed store. credentialsFile is a service
// account JSON key; when empty, application default credentials are used.
func NewSheets(ctx context.Context, spreadsheetID, credentialsFile string) (*Sheets, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// AppendAttendees appends all rows in one values.append call.
func (s *Sheets) AppendAttendees(ctx context.Context, rows []models.AttendeeRow) error {
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, []interface{}{
			r.Timestamp.Format(time.RFC3339),
			r.RegistrationID,
			r.Kind,
			r.Name,
			r.Email,
			r.Phone,
			strconv.Itoa(r.TotalInGroup),
			r.ReferralCode,
			strconv.FormatBool(r.ConsentGiven),
			r.Status,
			r.EmailSentStatus,
		})
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, RegistrationSheet+"!A:K", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return wrap("append attendees", err)
}

// ScanAttendees reads every data row below the header.
func (s *Sheets) ScanAttendees(ctx context.Context) ([]models.AttendeeRow, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, RegistrationSheet+"!A2:K").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("scan attendees", err)
	}
	list := make([]models.AttendeeRow, 0, len(resp.Values))
	for i, cells := range resp.Values {
		r := models.AttendeeRow{
			Ref:             int64(i + 2),
			Timestamp:       cellTime(cells, 0),
			RegistrationID:  cellString(cells, 1),
			Kind:            cellString(cells, 2),
			Name:            cellString(cells, 3),
			Email:           cellString(cells, 4),
			Phone:           cellString(cells, 5),
			TotalInGroup:    cellInt(cells, 6),
			ReferralCode:    cellString(cells, 7),
			ConsentGiven:    cellString(cells, 8) == "true",
			Status:          cellString(cells, 9),
			EmailSentStatus: cellString(cells, 10),
		}
		list = append(list, r)
	}
	return list, nil
}

// UpdateCell overwrites a single cell addressed by row number and column.
func (s *Sheets) UpdateCell(ctx context.Context, ref int64, col Column, value string) error {
	if col < ColTimestamp || col > ColEmailSent {
		return wrap("update cell", fmt.Errorf("unknown column %d", col))
	}
	cell := fmt.Sprintf("%s!%c%d", RegistrationSheet, 'A'+rune(col-1), ref)
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, cell, &sheets.ValueRange{Values: [][]interface{}{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return wrap("update cell", err)
}

// AppendSubscription appends one newsletter row.
func (s *Sheets) AppendSubscription(ctx context.Context, sub models.NewsletterSubscription) error {
	values := [][]interface{}{{
		sub.Timestamp.Format(time.RFC3339),
		sub.Email,
		sub.Source,
		sub.Status,
	}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, NewsletterSheet+"!A:D", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return wrap("append subscription", err)
}

// ScanSubscriptions reads every newsletter row below the header.
func (s *Sheets) ScanSubscriptions(ctx context.Context) ([]models.NewsletterSubscription, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, NewsletterSheet+"!A2:D").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("scan subscriptions", err)
	}
	list := make([]models.NewsletterSubscription, 0, len(resp.Values))
	for _, cells := range resp.Values {
		list = append(list, models.NewsletterSubscription{
			Timestamp: cellTime(cells, 0),
			Email:     cellString(cells, 1),
			Source:    cellString(cells, 2),
			Status:    cellString(cells, 3),
		})
	}
	return list, nil
}

func cellString(cells []interface{}, i int) string {
	if i >= len(cells) {
		return ""
	}
	return fmt.Sprint(cells[i])
}

func cellInt(cells []interface{}, i int) int {
	n, _ := strconv.Atoi(cellString(cells, i))
	return n
}

func cellTime(cells []interface{}, i int) time.Time {
	t, _ := time.Parse(time.RFC3339, cellString(cells, i))
	return t
}
