// Package mailer is the transactional email transport abstraction. The
// registration pipeline treats every send failure as a per-recipient
// signal, never as a fatal error, so implementations must surface
// transport problems as *DeliveryError rather than panicking or retrying.
package mailer

import (
	"context"
	"fmt"
)

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	PlainBody   string
	HTMLBody    string
	DisplayName string // sender display name, e.g. "Dexabrain Team"
	ReplyTo     string
}

// Dispatcher sends transactional email.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError wraps a transport or provider failure for one recipient.
type DeliveryError struct {
	To  string
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("deliver to %s: %v", e.To, e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
