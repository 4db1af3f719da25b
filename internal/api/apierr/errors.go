package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidChoice      = "INVALID_CHOICE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotParticipant     = "NOT_PARTICIPANT"
	CodeAlreadyPlayed      = "ALREADY_PLAYED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeNoActiveMatch      = "NO_ACTIVE_MATCH"
	CodeAlreadyInMatch     = "ALREADY_IN_MATCH"
	CodeMatchNotJoinable   = "MATCH_NOT_JOINABLE"
	CodeSelfJoin           = "SELF_JOIN"
	CodeMatchNotInProgress = "MATCH_NOT_IN_PROGRESS"
	CodeMatchDecided       = "MATCH_DECIDED"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}
	case errors.Is(err, model.ErrNoActiveMatch):
		return &httpError{http.StatusNotFound, APIError{CodeNoActiveMatch, "No active match"}}
	case errors.Is(err, model.ErrAlreadyActive):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInMatch, "You already have an active match"}}
	case errors.Is(err, model.ErrMatchNotWaiting):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotJoinable, "Match is not open for joining"}}
	case errors.Is(err, model.ErrSelfJoin):
		return &httpError{http.StatusConflict, APIError{CodeSelfJoin, "Cannot join your own match"}}
	case errors.Is(err, model.ErrMatchNotPlaying):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotInProgress, "Match is not in progress"}}
	case errors.Is(err, model.ErrMatchAlreadyDecided):
		return &httpError{http.StatusConflict, APIError{CodeMatchDecided, "Match has already been decided"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "You are not a participant in this match"}}
	case errors.Is(err, model.ErrInvalidChoice):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidChoice, "Choice must be rock, paper or scissors"}}
	case errors.Is(err, model.ErrAlreadyPlayed):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyPlayed, "Choice already recorded for this round"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Username must be between 3 and 50 characters"}}
	case errors.Is(err, auth.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Password must be at least 6 characters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
