package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rpsarena/rps-arena-go/internal/api/apierr"
	"github.com/rpsarena/rps-arena-go/internal/api/middleware"
	"github.com/rpsarena/rps-arena-go/internal/api/request"
	"github.com/rpsarena/rps-arena-go/internal/api/response"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/notify"
	"github.com/rpsarena/rps-arena-go/internal/services/match"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// MatchHandler handles the match lifecycle endpoints
type MatchHandler struct {
	controller  match.ControllerInterface
	storage     storage.Storage
	broadcaster *notify.Broadcaster
	logger      *slog.Logger
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(
	controller match.ControllerInterface,
	storage storage.Storage,
	broadcaster *notify.Broadcaster,
	logger *slog.Logger,
) *MatchHandler {
	return &MatchHandler{
		controller:  controller,
		storage:     storage,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// usernamesFor resolves display names for the match's human identities
func (h *MatchHandler) usernamesFor(r *http.Request, matches ...*model.Match) map[model.UserID]string {
	usernames := make(map[model.UserID]string)
	for _, m := range matches {
		for _, id := range []model.UserID{m.Player1, m.Player2.UserID, m.Winner.UserID} {
			if id == "" {
				continue
			}
			if _, ok := usernames[id]; ok {
				continue
			}
			user, err := h.storage.GetUser(r.Context(), id)
			if err != nil {
				h.logger.Warn("failed to resolve username",
					slog.String("user_id", string(id)),
					slog.String("error", err.Error()))
				continue
			}
			usernames[id] = user.Username
		}
	}
	return usernames
}

// matchView projects a match with its round history for a response
func (h *MatchHandler) matchView(r *http.Request, m *model.Match) (notify.MatchView, error) {
	rounds, err := h.controller.Rounds(r.Context(), m.ID)
	if err != nil {
		return notify.MatchView{}, err
	}
	return notify.NewMatchView(m, rounds, h.usernamesFor(r, m)), nil
}

// Create handles POST /matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	// An empty body means a human opponent
	var req request.CreateMatchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
			return
		}
	}

	m, err := h.controller.Create(r.Context(), user.ID, req.Machine)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.broadcaster.MatchUpdated(r.Context(), m, nil)
	h.broadcaster.PublishOpenMatches(r.Context())

	view, err := h.matchView(r, m)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, view)
}

// List handles GET /matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.controller.ListOpen(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	usernames := h.usernamesFor(r, matches...)
	views := make([]notify.OpenMatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, notify.NewOpenMatchView(m, usernames))
	}
	response.JSON(w, http.StatusOK, views)
}

// Mine handles GET /matches/mine
func (h *MatchHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	m, err := h.controller.MatchForUser(r.Context(), user.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	view, err := h.matchView(r, m)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// Get handles GET /matches/{matchId}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID := model.MatchID(mux.Vars(r)["matchId"])

	m, err := h.controller.Get(r.Context(), matchID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	view, err := h.matchView(r, m)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// Join handles POST /matches/{matchId}/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	matchID := model.MatchID(mux.Vars(r)["matchId"])

	m, err := h.controller.Join(r.Context(), matchID, user.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	rounds, err := h.controller.Rounds(r.Context(), m.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.broadcaster.MatchUpdated(r.Context(), m, rounds)
	h.broadcaster.PublishOpenMatches(r.Context())

	response.JSON(w, http.StatusOK, notify.NewMatchView(m, rounds, h.usernamesFor(r, m)))
}

// Choice handles POST /matches/{matchId}/choice
func (h *MatchHandler) Choice(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	matchID := model.MatchID(mux.Vars(r)["matchId"])

	var req request.ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	choice, err := model.ParseChoice(req.Choice)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	result, err := h.controller.SubmitChoice(r.Context(), matchID, user.ID, choice)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	rounds, err := h.controller.Rounds(r.Context(), matchID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	usernames := h.usernamesFor(r, result.Match)
	matchView := notify.NewMatchView(result.Match, rounds, usernames)

	switch result.State {
	case match.PlayStatePending:
		h.broadcaster.RoundPending(result.Match, result.Round)
		h.broadcaster.MatchUpdated(r.Context(), result.Match, rounds)
	case match.PlayStateResolved:
		h.broadcaster.MatchUpdated(r.Context(), result.Match, rounds)
		h.broadcaster.RoundResolved(result.Match, result.Round)
		if result.MatchFinished {
			h.broadcaster.PublishRanking(r.Context())
			h.broadcaster.PublishOpenMatches(r.Context())
		}
	}

	response.JSON(w, http.StatusOK, response.PlayResponse{
		State:         string(result.State),
		MatchFinished: result.MatchFinished,
		Match:         matchView,
		Round:         roundView(matchView, result.Round),
	})
}

// Abandon handles POST /matches/{matchId}/abandon
func (h *MatchHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	matchID := model.MatchID(mux.Vars(r)["matchId"])

	m, err := h.controller.Abandon(r.Context(), matchID, user.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	rounds, err := h.controller.Rounds(r.Context(), m.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	// Abandoning an already decided match is a no-op; only a real
	// transition is worth announcing
	if m.Status == model.MatchStatusAbandoned {
		h.broadcaster.MatchAbandoned(r.Context(), m, rounds)
		h.broadcaster.PublishRanking(r.Context())
		h.broadcaster.PublishOpenMatches(r.Context())
	}

	response.JSON(w, http.StatusOK, notify.NewMatchView(m, rounds, h.usernamesFor(r, m)))
}

// roundView picks the submitted round out of the projected match view
func roundView(view notify.MatchView, round *model.Round) *notify.RoundView {
	for i := range view.Rounds {
		if view.Rounds[i].Number == round.Number {
			return &view.Rounds[i]
		}
	}
	return nil
}
