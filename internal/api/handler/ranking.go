package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rpsarena/rps-arena-go/internal/api/apierr"
	"github.com/rpsarena/rps-arena-go/internal/api/response"
	"github.com/rpsarena/rps-arena-go/internal/services/ranking"
)

// RankingHandler serves the leaderboard
type RankingHandler struct {
	ranking *ranking.Service
	logger  *slog.Logger
}

// NewRankingHandler creates a new RankingHandler
func NewRankingHandler(ranking *ranking.Service, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{
		ranking: ranking,
		logger:  logger,
	}
}

// Get handles GET /ranking
func (h *RankingHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := ranking.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.ranking.TopPlayers(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, entries)
}
