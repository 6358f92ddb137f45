package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dexabrain/event-backend/internal/models"
)

// Memory is an in-process Store used by tests and as a dev fallback.
// Refs are assigned sequentially at append time.
type Memory struct {
	mu      sync.Mutex
	nextRef int64
	rows    []models.AttendeeRow
	subs    []models.NewsletterSubscription
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextRef: 1}
}

// AppendAttendees appends all rows in one batch.
func (m *Memory) AppendAttendees(ctx context.Context, rows []models.AttendeeRow) error {
	if err := ctx.Err(); err != nil {
		return wrap("append attendees", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r.Ref = m.nextRef
		m.nextRef++
		m.rows = append(m.rows, r)
	}
	return nil
}

// ScanAttendees returns a copy of every attendee row.
func (m *Memory) ScanAttendees(ctx context.Context) ([]models.AttendeeRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("scan attendees", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AttendeeRow, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

// UpdateCell overwrites one field of one row.
func (m *Memory) UpdateCell(ctx context.Context, ref int64, col Column, value string) error {
	if err := ctx.Err(); err != nil {
		return wrap("update cell", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Ref != ref {
			continue
		}
		switch col {
		case ColTimestamp:
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return wrap("update cell", err)
			}
			m.rows[i].Timestamp = t
		case ColRegistrationID:
			m.rows[i].RegistrationID = value
		case ColAttendeeType:
			m.rows[i].Kind = value
		case ColName:
			m.rows[i].Name = value
		case ColEmail:
			m.rows[i].Email = value
		case ColPhone:
			m.rows[i].Phone = value
		case ColTotalInGroup:
			n, err := strconv.Atoi(value)
			if err != nil {
				return wrap("update cell", err)
			}
			m.rows[i].TotalInGroup = n
		case ColReferralCode:
			m.rows[i].ReferralCode = value
		case ColConsentGiven:
			m.rows[i].ConsentGiven = value == "true"
		case ColStatus:
			m.rows[i].Status = value
		case ColEmailSent:
			m.rows[i].EmailSentStatus = value
		default:
			return wrap("update cell", fmt.Errorf("unknown column %d", col))
		}
		return nil
	}
	return wrap("update cell", fmt.Errorf("row %d not found", ref))
}

// AppendSubscription appends one newsletter row.
func (m *Memory) AppendSubscription(ctx context.Context, sub models.NewsletterSubscription) error {
	if err := ctx.Err(); err != nil {
		return wrap("append subscription", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, sub)
	return nil
}

// ScanSubscriptions returns a copy of every newsletter row.
func (m *Memory) ScanSubscriptions(ctx context.Context) ([]models.NewsletterSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("scan subscriptions", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.NewsletterSubscription, len(m.subs))
	copy(out, m.subs)
	return out, nil
}
