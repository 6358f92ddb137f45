package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dexabrain/event-backend/internal/models"
)

// Postgres implements Store on top of a pgx pool. Each attendee row maps to
// one row of event_registrations; Refs are the bigserial primary keys.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// pgColumns maps sheet column positions to table column names. Updates go
// through this map so UpdateCell can never interpolate caller input.
var pgColumns = map[Column]string{
	ColTimestamp:      "created_at",
	ColRegistrationID: "registration_id",
	ColAttendeeType:   "attendee_type",
	ColName:           "name",
	ColEmail:          "email",
	ColPhone:          "phone",
	ColTotalInGroup:   "total_in_group",
	ColReferralCode:   "referral_code",
	ColConsentGiven:   "consent_given",
	ColStatus:         "status",
	ColEmailSent:      "confirmation_email_sent",
}

// AppendAttendees inserts all rows in a single batch round trip.
func (p *Postgres) AppendAttendees(ctx context.Context, rows []models.AttendeeRow) error {
	const q = `INSERT INTO event_registrations
		(created_at, registration_id, attendee_type, name, email, phone, total_in_group, referral_code, consent_given, status, confirmation_email_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(q, r.Timestamp, r.RegistrationID, r.Kind, r.Name, r.Email, r.Phone,
			r.TotalInGroup, r.ReferralCode, r.ConsentGiven, r.Status, r.EmailSentStatus)
	}
	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return wrap("append attendees", err)
		}
	}
	return nil
}

// ScanAttendees returns every attendee row in insertion order.
func (p *Postgres) ScanAttendees(ctx context.Context) ([]models.AttendeeRow, error) {
	const q = `SELECT id, created_at, registration_id, attendee_type, name, email, phone,
		total_in_group, referral_code, consent_given, status, confirmation_email_sent
		FROM event_registrations ORDER BY id`
	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, wrap("scan attendees", err)
	}
	defer rows.Close()
	var list []models.AttendeeRow
	for rows.Next() {
		var r models.AttendeeRow
		if err := rows.Scan(&r.Ref, &r.Timestamp, &r.RegistrationID, &r.Kind, &r.Name, &r.Email,
			&r.Phone, &r.TotalInGroup, &r.ReferralCode, &r.ConsentGiven, &r.Status, &r.EmailSentStatus); err != nil {
			return nil, wrap("scan attendees", err)
		}
		list = append(list, r)
	}
	return list, wrap("scan attendees", rows.Err())
}

// UpdateCell overwrites one field of one row by primary key.
func (p *Postgres) UpdateCell(ctx context.Context, ref int64, col Column, value string) error {
	name, ok := pgColumns[col]
	if !ok {
		return wrap("update cell", fmt.Errorf("unknown column %d", col))
	}
	var arg any = value
	switch col {
	case ColTimestamp:
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return wrap("update cell", err)
		}
		arg = t
	case ColTotalInGroup:
		n, err := strconv.Atoi(value)
		if err != nil {
			return wrap("update cell", err)
		}
		arg = n
	case ColConsentGiven:
		arg = value == "true"
	}
	q := fmt.Sprintf(`UPDATE event_registrations SET %s = $1 WHERE id = $2`, name)
	tag, err := p.pool.Exec(ctx, q, arg, ref)
	if err != nil {
		return wrap("update cell", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("update cell", fmt.Errorf("row %d not found", ref))
	}
	return nil
}

// AppendSubscription inserts one newsletter row.
func (p *Postgres) AppendSubscription(ctx context.Context, sub models.NewsletterSubscription) error {
	const q = `INSERT INTO newsletter_subscriptions (created_at, email, source, status)
		VALUES ($1, $2, $3, $4)`
	_, err := p.pool.Exec(ctx, q, sub.Timestamp, sub.Email, sub.Source, sub.Status)
	return wrap("append subscription", err)
}

// ScanSubscriptions returns every newsletter row in insertion order.
func (p *Postgres) ScanSubscriptions(ctx context.Context) ([]models.NewsletterSubscription, error) {
	const q = `SELECT created_at, email, source, status FROM newsletter_subscriptions ORDER BY id`
	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, wrap("scan subscriptions", err)
	}
	defer rows.Close()
	var list []models.NewsletterSubscription
	for rows.Next() {
		var s models.NewsletterSubscription
		if err := rows.Scan(&s.Timestamp, &s.Email, &s.Source, &s.Status); err != nil {
			return nil, wrap("scan subscriptions", err)
		}
		list = append(list, s)
	}
	return list, wrap("scan subscriptions", rows.Err())
}
