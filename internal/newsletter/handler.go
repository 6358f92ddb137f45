package newsletter

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/pkg/response"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubscribeRequest is the body for POST /api/newsletter.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// Handler handles newsletter HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a newsletter handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Subscribe handles POST /api/newsletter.
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email is required")
		return
	}
	if req.Email == "" {
		response.BadRequest(c, "Email is required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		response.BadRequest(c, "Invalid email address")
		return
	}

	if err := h.svc.Subscribe(c.Request.Context(), req.Email, models.SourceNewsletterForm); err != nil {
		h.logger.Error("newsletter subscribe failed", zap.String("email", req.Email), zap.Error(err))
		response.Internal(c, "Newsletter subscription failed")
		return
	}
	response.OK(c, "Successfully subscribed to newsletter", gin.H{"email": req.Email})
}
