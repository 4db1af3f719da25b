package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rpsarena/rps-arena-go/internal/api/apierr"
	"github.com/rpsarena/rps-arena-go/internal/api/middleware"
	"github.com/rpsarena/rps-arena-go/internal/api/request"
	"github.com/rpsarena/rps-arena-go/internal/api/response"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
)

// AuthHandler handles registration, login and identity endpoints
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", string(session.User.ID)),
		slog.String("username", session.User.Username),
	)

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /users/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
