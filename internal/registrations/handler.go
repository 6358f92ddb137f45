package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/pkg/queue"
	"github.com/dexabrain/event-backend/pkg/response"
)

// RegisterRequest is the body for POST /api/registration.
type RegisterRequest struct {
	PrimaryAttendee     models.Attendee   `json:"primaryAttendee"`
	AdditionalAttendees []models.Attendee `json:"additionalAttendees"`
	ReferralCode        string            `json:"referralCode"`
	ConsentGiven        bool              `json:"consentGiven"`
}

// ResendRequest is the body for POST /api/registrations/:id/resend. An
// empty email resends to every attendee of the registration.
type ResendRequest struct {
	Email string `json:"email"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc    *Service
	queue  *queue.Queue // nil when redis is disabled
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, queue: q, logger: logger}
}

// Register handles POST /api/registration: runs the submission pipeline
// and reports the registration outcome. Email delivery results are not
// part of the response; they are persisted per attendee row.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), SubmitRequest{
		PrimaryAttendee:     req.PrimaryAttendee,
		AdditionalAttendees: req.AdditionalAttendees,
		ReferralCode:        req.ReferralCode,
		ConsentGiven:        req.ConsentGiven,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Message)
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		response.Internal(c, "Registration failed")
		return
	}

	response.OK(c, "Registration successful", gin.H{
		"registrationId":  result.RegistrationID,
		"totalAttendees":  result.TotalAttendees,
		"primaryAttendee": req.PrimaryAttendee,
	})
}

// Get handles GET /api/registrations/:id. Returns the attendee rows of
// one registration, including their stored email delivery status.
func (h *Handler) Get(c *gin.Context) {
	registrationID := c.Param("id")
	rows, err := h.svc.Rows(c.Request.Context(), registrationID)
	if err != nil {
		h.logger.Error("load registration failed", zap.String("registration_id", registrationID), zap.Error(err))
		response.Internal(c, "failed to load registration")
		return
	}
	if len(rows) == 0 {
		response.NotFound(c, "registration not found")
		return
	}
	response.OK(c, "", gin.H{
		"registrationId": registrationID,
		"totalAttendees": rows[0].TotalInGroup,
		"attendees":      rows,
	})
}

// Resend handles POST /api/registrations/:id/resend. Enqueues a
// confirmation resend job for the worker.
func (h *Handler) Resend(c *gin.Context) {
	if h.queue == nil {
		response.Internal(c, "resend unavailable")
		return
	}
	registrationID := c.Param("id")

	var req ResendRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	rows, err := h.svc.Rows(c.Request.Context(), registrationID)
	if err != nil {
		h.logger.Error("load registration failed", zap.String("registration_id", registrationID), zap.Error(err))
		response.Internal(c, "failed to load registration")
		return
	}
	if len(rows) == 0 {
		response.NotFound(c, "registration not found")
		return
	}

	err = h.queue.EnqueueEmailResend(c.Request.Context(), queue.EmailResendPayload{
		RegistrationID: registrationID,
		RecipientEmail: req.Email,
	})
	if err != nil {
		h.logger.Error("enqueue resend failed", zap.String("registration_id", registrationID), zap.Error(err))
		response.Internal(c, "failed to queue resend")
		return
	}
	response.OK(c, "resend queued", nil)
}
