// Package registrations implements the registration submission pipeline:
// validate, persist attendee rows, auto-subscribe the registrant to the
// newsletter, fan out confirmation emails with per-attendee fault
// tolerance, record delivery status back into the store, and notify the
// admin. Only validation failures and the initial row append can fail a
// submission; every email problem degrades to a per-row status.
package registrations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/newsletter"
	"github.com/dexabrain/event-backend/internal/store"
)

// ValidationError reports the first offending request field. Nothing is
// persisted when validation fails.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SubmitRequest is a validated-shape registration submission.
type SubmitRequest struct {
	PrimaryAttendee     models.Attendee
	AdditionalAttendees []models.Attendee
	ReferralCode        string
	ConsentGiven        bool
}

func (r SubmitRequest) allAttendees() []models.Attendee {
	return append([]models.Attendee{r.PrimaryAttendee}, r.AdditionalAttendees...)
}

// SendResult records the outcome of one confirmation send attempt.
type SendResult struct {
	Attendee models.Attendee
	Sent     bool
	SentAt   time.Time
}

// Result summarizes a successful submission.
type Result struct {
	RegistrationID string
	TotalAttendees int
	Attendees      []models.Attendee
	SendResults    []SendResult
}

// Service orchestrates registration submissions.
type Service struct {
	store       store.RegistrationStore
	newsletter  *newsletter.Service
	dispatcher  mailer.Dispatcher
	renderer    *emails.Renderer
	email       config.EmailConfig
	callTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates the registration service.
func NewService(st store.RegistrationStore, nl *newsletter.Service, dispatcher mailer.Dispatcher, renderer *emails.Renderer, email config.EmailConfig, callTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Service{
		store:       st,
		newsletter:  nl,
		dispatcher:  dispatcher,
		renderer:    renderer,
		email:       email,
		callTimeout: callTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// newRegistrationID returns an identifier of the form REG<unix-millis>-<8
// uuid chars>. The timestamp keeps rows human-scannable; the suffix makes
// collisions between concurrent submissions negligible.
func (s *Service) newRegistrationID() string {
	return fmt.Sprintf("REG%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}

func validate(req SubmitRequest) *ValidationError {
	switch {
	case req.PrimaryAttendee.Name == "":
		return &ValidationError{Field: "primaryAttendee.name", Message: "primary attendee name is required"}
	case req.PrimaryAttendee.Email == "":
		return &ValidationError{Field: "primaryAttendee.email", Message: "primary attendee email is required"}
	case req.PrimaryAttendee.Phone == "":
		return &ValidationError{Field: "primaryAttendee.phone", Message: "primary attendee phone is required"}
	}
	if !req.ConsentGiven {
		return &ValidationError{Field: "consentGiven", Message: "privacy consent is required"}
	}
	for i, a := range req.AdditionalAttendees {
		switch {
		case a.Name == "":
			return &ValidationError{Field: fmt.Sprintf("additionalAttendees[%d].name", i), Message: "all attendee information is required"}
		case a.Email == "":
			return &ValidationError{Field: fmt.Sprintf("additionalAttendees[%d].email", i), Message: "all attendee information is required"}
		case a.Phone == "":
			return &ValidationError{Field: fmt.Sprintf("additionalAttendees[%d].phone", i), Message: "all attendee information is required"}
		}
	}
	return nil
}

// Submit runs the full registration pipeline. See the package comment for
// the fatal / non-fatal policy per step.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	if verr := validate(req); verr != nil {
		return nil, verr
	}

	registrationID := s.newRegistrationID()
	totalAttendees := 1 + len(req.AdditionalAttendees)
	createdAt := s.now()

	rows := make([]models.AttendeeRow, 0, totalAttendees)
	rows = append(rows, models.AttendeeRow{
		Timestamp:      createdAt,
		RegistrationID: registrationID,
		Kind:           models.KindPrimary,
		Name:           req.PrimaryAttendee.Name,
		Email:          req.PrimaryAttendee.Email,
		Phone:          req.PrimaryAttendee.Phone,
		TotalInGroup:   totalAttendees,
		ReferralCode:   req.ReferralCode,
		ConsentGiven:   req.ConsentGiven,
		Status:         models.StatusConfirmed,
	})
	for _, a := range req.AdditionalAttendees {
		rows = append(rows, models.AttendeeRow{
			Timestamp:      createdAt,
			RegistrationID: registrationID,
			Kind:           models.KindAdditional,
			Name:           a.Name,
			Email:          a.Email,
			Phone:          a.Phone,
			TotalInGroup:   totalAttendees,
			Status:         models.StatusConfirmed,
		})
	}

	appendCtx, cancel := s.callCtx(ctx)
	err := s.store.AppendAttendees(appendCtx, rows)
	cancel()
	if err != nil {
		s.logger.Error("append attendee rows failed",
			zap.String("registration_id", registrationID), zap.Error(err))
		return nil, err
	}

	// Auto-subscribe the registrant; a failure here never fails the
	// registration.
	if s.newsletter != nil {
		if err := s.newsletter.Subscribe(ctx, req.PrimaryAttendee.Email, models.SourceRegistration); err != nil {
			s.logger.Warn("newsletter auto-subscribe failed",
				zap.String("email", req.PrimaryAttendee.Email), zap.Error(err))
		}
	}

	sendResults := s.sendConfirmations(ctx, req, registrationID, totalAttendees)
	s.recordEmailStatus(ctx, registrationID, sendResults)
	s.notifyAdmin(ctx, req, registrationID, totalAttendees)

	return &Result{
		RegistrationID: registrationID,
		TotalAttendees: totalAttendees,
		Attendees:      req.allAttendees(),
		SendResults:    sendResults,
	}, nil
}

// sendConfirmations attempts one confirmation email per attendee, primary
// first, in order. Attempts are independent: a failure is captured and the
// loop continues.
func (s *Service) sendConfirmations(ctx context.Context, req SubmitRequest, registrationID string, totalAttendees int) []SendResult {
	attendees := req.allAttendees()
	results := make([]SendResult, 0, len(attendees))
	subject := s.renderer.ConfirmationSubject()

	for i, attendee := range attendees {
		isPrimary := i == 0
		msg := mailer.Message{
			To:          attendee.Email,
			Subject:     subject,
			PlainBody:   s.renderer.ConfirmationText(attendee, registrationID, totalAttendees, req.AdditionalAttendees, isPrimary),
			HTMLBody:    s.renderer.ConfirmationHTML(attendee, registrationID, totalAttendees, req.AdditionalAttendees, isPrimary),
			DisplayName: s.email.FromName,
			ReplyTo:     s.email.ReplyTo,
		}

		sendCtx, cancel := s.callCtx(ctx)
		err := s.dispatcher.Send(sendCtx, msg)
		cancel()
		if err != nil {
			s.logger.Warn("confirmation send failed",
				zap.String("registration_id", registrationID),
				zap.String("to", attendee.Email),
				zap.Error(err))
		}
		results = append(results, SendResult{Attendee: attendee, Sent: err == nil, SentAt: s.now()})
	}
	return results
}

// recordEmailStatus writes a terminal EmailSentStatus to every row of the
// registration: the send completion timestamp on success, "Failed"
// otherwise. Rows are matched to send results by email address; when two
// attendees share an address, results are consumed in order so the first
// result lands on the first matching row. Store failures here are logged
// and ignored.
func (s *Service) recordEmailStatus(ctx context.Context, registrationID string, results []SendResult) {
	scanCtx, cancel := s.callCtx(ctx)
	all, err := s.store.ScanAttendees(scanCtx)
	cancel()
	if err != nil {
		s.logger.Warn("scan for status write-back failed",
			zap.String("registration_id", registrationID), zap.Error(err))
		return
	}

	consumed := make([]bool, len(results))
	for _, row := range all {
		if row.RegistrationID != registrationID {
			continue
		}
		idx := -1
		for i, res := range results {
			if !consumed[i] && res.Attendee.Email == row.Email {
				idx = i
				break
			}
		}
		if idx < 0 {
			s.logger.Warn("no send result for attendee row",
				zap.String("registration_id", registrationID),
				zap.String("email", row.Email))
			continue
		}
		consumed[idx] = true

		status := models.EmailStatusFailed
		if results[idx].Sent {
			status = results[idx].SentAt.UTC().Format(time.RFC3339)
		}
		updateCtx, cancel := s.callCtx(ctx)
		err := s.store.UpdateCell(updateCtx, row.Ref, store.ColEmailSent, status)
		cancel()
		if err != nil {
			s.logger.Warn("email status write-back failed",
				zap.String("registration_id", registrationID),
				zap.Int64("ref", row.Ref),
				zap.Error(err))
		}
	}
}

// notifyAdmin sends the new-registration summary to the configured admin
// address. Best-effort: failures are logged and ignored.
func (s *Service) notifyAdmin(ctx context.Context, req SubmitRequest, registrationID string, totalAttendees int) {
	if s.email.NotificationEmail == "" {
		return
	}
	subject, html, text := s.renderer.AdminNotification(
		req.PrimaryAttendee, req.AdditionalAttendees, req.ReferralCode, req.ConsentGiven,
		registrationID, totalAttendees, s.now())

	sendCtx, cancel := s.callCtx(ctx)
	defer cancel()
	err := s.dispatcher.Send(sendCtx, mailer.Message{
		To:          s.email.NotificationEmail,
		Subject:     subject,
		PlainBody:   text,
		HTMLBody:    html,
		DisplayName: s.email.SystemName,
		ReplyTo:     s.email.ReplyTo,
	})
	if err != nil {
		s.logger.Warn("admin notification failed",
			zap.String("registration_id", registrationID), zap.Error(err))
	}
}

// Rows returns the attendee rows of one registration in stored order.
func (s *Service) Rows(ctx context.Context, registrationID string) ([]models.AttendeeRow, error) {
	scanCtx, cancel := s.callCtx(ctx)
	defer cancel()
	all, err := s.store.ScanAttendees(scanCtx)
	if err != nil {
		return nil, err
	}
	var rows []models.AttendeeRow
	for _, r := range all {
		if r.RegistrationID == registrationID {
			rows = append(rows, r)
		}
	}
	return rows, nil
}
