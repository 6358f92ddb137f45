package models

import "time"

// Subscription sources.
const (
	SourceRegistration   = "registration"
	SourceNewsletterForm = "newsletter_form"
)

// SubscriptionActive is the only subscription status currently issued.
const SubscriptionActive = "active"

// NewsletterSubscription is one row in the Newsletter_Subscriptions store.
// Rows are created once and never mutated; at most one row exists per
// distinct email string.
type NewsletterSubscription struct {
	Timestamp time.Time `json:"timestamp"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
}
