package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rpsarena/rps-arena-go/internal/api/apierr"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/match"
	"github.com/rpsarena/rps-arena-go/internal/sse"
)

// EventsHandler serves the SSE streams
type EventsHandler struct {
	controller match.ControllerInterface
	hubManager *sse.HubManager
	global     *sse.Hub
	logger     *slog.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(
	controller match.ControllerInterface,
	hubManager *sse.HubManager,
	global *sse.Hub,
	logger *slog.Logger,
) *EventsHandler {
	return &EventsHandler{
		controller: controller,
		hubManager: hubManager,
		global:     global,
		logger:     logger,
	}
}

// Global handles GET /events: open-match and ranking broadcasts
func (h *EventsHandler) Global(w http.ResponseWriter, r *http.Request) {
	sse.ServeSSE(w, r, h.global)
}

// Room handles GET /matches/{matchId}/events: one match's updates.
// Any authenticated user may watch; play still goes through the
// participant checks on the mutation endpoints.
func (h *EventsHandler) Room(w http.ResponseWriter, r *http.Request) {
	matchID := model.MatchID(mux.Vars(r)["matchId"])

	if _, err := h.controller.Get(r.Context(), matchID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(matchID)
	sse.ServeSSE(w, r, hub)
}
