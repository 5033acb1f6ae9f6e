package handler

import (
	"net/http"

	"github.com/mcoot/tallyledger/internal/api/middleware"
	"github.com/mcoot/tallyledger/internal/web/sse"
)

// EventsHandler streams display refresh events
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetActor(r.Context())
	sse.ServeSSE(w, r, h.hub, actor.Name)
}
