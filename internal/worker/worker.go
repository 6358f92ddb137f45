// Package worker processes background jobs: re-sending confirmation
// emails for existing registrations on admin request.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/store"
	"github.com/dexabrain/event-backend/pkg/queue"
)

// EmailProcessor re-sends confirmation emails and refreshes the stored
// delivery status of the affected rows.
type EmailProcessor struct {
	store      store.RegistrationStore
	dispatcher mailer.Dispatcher
	renderer   *emails.Renderer
	email      config.EmailConfig
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewEmailProcessor creates a resend processor.
func NewEmailProcessor(st store.RegistrationStore, dispatcher mailer.Dispatcher, renderer *emails.Renderer, email config.EmailConfig, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{store: st, dispatcher: dispatcher, renderer: renderer, email: email, queue: q, logger: logger}
}

// Process executes one resend job. A send failure for any targeted row
// returns an error so the job is retried; the per-row status still
// records "Failed" for rows whose send did not go through.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmailResend {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailResendPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	all, err := p.store.ScanAttendees(ctx)
	if err != nil {
		return fmt.Errorf("scan attendees: %w", err)
	}

	var group []models.AttendeeRow
	for _, r := range all {
		if r.RegistrationID == payload.RegistrationID {
			group = append(group, r)
		}
	}
	if len(group) == 0 {
		return fmt.Errorf("registration not found: %s", payload.RegistrationID)
	}

	var additional []models.Attendee
	for _, r := range group {
		if r.Kind == models.KindAdditional {
			additional = append(additional, models.Attendee{Name: r.Name, Email: r.Email, Phone: r.Phone})
		}
	}

	subject := p.renderer.ConfirmationSubject()
	var failed int
	for _, row := range group {
		if payload.RecipientEmail != "" && row.Email != payload.RecipientEmail {
			continue
		}
		attendee := models.Attendee{Name: row.Name, Email: row.Email, Phone: row.Phone}
		isPrimary := row.IsPrimary()
		msg := mailer.Message{
			To:          row.Email,
			Subject:     subject,
			PlainBody:   p.renderer.ConfirmationText(attendee, row.RegistrationID, row.TotalInGroup, additional, isPrimary),
			HTMLBody:    p.renderer.ConfirmationHTML(attendee, row.RegistrationID, row.TotalInGroup, additional, isPrimary),
			DisplayName: p.email.FromName,
			ReplyTo:     p.email.ReplyTo,
		}

		status := time.Now().UTC().Format(time.RFC3339)
		if err := p.dispatcher.Send(ctx, msg); err != nil {
			p.logger.Warn("resend failed",
				zap.String("registration_id", row.RegistrationID),
				zap.String("to", row.Email),
				zap.Error(err))
			status = models.EmailStatusFailed
			failed++
		}
		if err := p.store.UpdateCell(ctx, row.Ref, store.ColEmailSent, status); err != nil {
			p.logger.Warn("status write-back failed",
				zap.Int64("ref", row.Ref), zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d resends failed", failed, len(group))
	}
	p.logger.Info("resend completed", zap.String("registration_id", payload.RegistrationID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
