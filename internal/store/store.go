// Package store provides the row-oriented attendee datastore. The contract
// is deliberately narrow: batch append, full scan, and single-cell update.
// There are no transactions and no query language; callers filter scans.
package store

import (
	"context"
	"fmt"

	"github.com/dexabrain/event-backend/internal/models"
)

// Column addresses one field of an attendee row by its position in the
// Event_Registrations layout. Positions are 1-based; ColEmailSent is the
// 11th column and is the only cell ever updated after append.
type Column int

const (
	ColTimestamp Column = iota + 1
	ColRegistrationID
	ColAttendeeType
	ColName
	ColEmail
	ColPhone
	ColTotalInGroup
	ColReferralCode
	ColConsentGiven
	ColStatus
	ColEmailSent
)

// Sheet (table) names, carried over from the spreadsheet layout.
const (
	RegistrationSheet = "Event_Registrations"
	NewsletterSheet   = "Newsletter_Subscriptions"
)

// StoreError wraps a backend failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// RegistrationStore persists attendee rows.
type RegistrationStore interface {
	// AppendAttendees appends all rows in one batch call.
	AppendAttendees(ctx context.Context, rows []models.AttendeeRow) error
	// ScanAttendees returns every attendee row with its Ref populated.
	ScanAttendees(ctx context.Context) ([]models.AttendeeRow, error)
	// UpdateCell overwrites a single field of a single row.
	UpdateCell(ctx context.Context, ref int64, col Column, value string) error
}

// NewsletterStore persists newsletter subscription rows.
type NewsletterStore interface {
	AppendSubscription(ctx context.Context, sub models.NewsletterSubscription) error
	ScanSubscriptions(ctx context.Context) ([]models.NewsletterSubscription, error)
}

// Store combines both row stores; every backend implements it.
type Store interface {
	RegistrationStore
	NewsletterStore
}
