package models

import "time"

// Attendee kind: position within a registration group.
const (
	KindPrimary    = "primary"
	KindAdditional = "additional"
)

// StatusConfirmed is the only registration status currently issued.
const StatusConfirmed = "confirmed"

// EmailSentStatus values. A successful send stores the completion
// timestamp in RFC3339 instead of a fixed label.
const (
	EmailStatusUnset  = ""
	EmailStatusFailed = "Failed"
)

// Attendee is one person in a registration request.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// AttendeeRow is the unit of storage: one row per attendee, grouped by
// RegistrationID. Field order mirrors the Event_Registrations columns.
type AttendeeRow struct {
	Ref             int64     `json:"ref"` // backend row reference; assigned on scan
	Timestamp       time.Time `json:"timestamp"`
	RegistrationID  string    `json:"registration_id"`
	Kind            string    `json:"kind"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	TotalInGroup    int       `json:"total_in_group"`
	ReferralCode    string    `json:"referral_code,omitempty"` // primary row only
	ConsentGiven    bool      `json:"consent_given"`           // primary row only
	Status          string    `json:"status"`
	EmailSentStatus string    `json:"email_sent_status,omitempty"`
}

// IsPrimary reports whether the row belongs to the registrant who
// submitted the form.
func (r AttendeeRow) IsPrimary() bool { return r.Kind == KindPrimary }
