// Package event serves the fixed event metadata and calendar export
// consumed by the marketing site.
package event

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/calendar"
	"github.com/dexabrain/event-backend/pkg/response"
)

// Handler handles event metadata HTTP endpoints.
type Handler struct {
	event config.EventConfig
}

// NewHandler creates an event handler.
func NewHandler(event config.EventConfig) *Handler {
	return &Handler{event: event}
}

// Get handles GET /api/event.
func (h *Handler) Get(c *gin.Context) {
	response.OK(c, "", gin.H{
		"name":        h.event.Name,
		"date":        h.event.Date,
		"time":        h.event.Time,
		"location":    h.event.Location,
		"address":     h.event.Address,
		"description": h.event.Description,
		"startsAt":    h.event.StartUTC,
		"endsAt":      h.event.EndUTC,
	})
}

// CalendarICS handles GET /api/event/calendar.ics.
func (h *Handler) CalendarICS(c *gin.Context) {
	ics := calendar.ICS(calendar.Event{
		Title:       h.event.Name,
		Description: h.event.Description,
		Location:    h.event.Location + ", " + h.event.Address,
		Start:       h.event.StartUTC,
		End:         h.event.EndUTC,
	}, fmt.Sprintf("%d@dexabrain.com", time.Now().UnixMilli()))

	c.Header("Content-Disposition", `attachment; filename="event.ics"`)
	c.Data(200, "text/calendar; charset=utf-8", []byte(ics))
}
