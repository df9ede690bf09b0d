package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/social"
)

// apiResponse is the uniform success envelope: status, payload, message.
type apiResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// apiError is the uniform failure envelope. Data is always null and Errors
// carries optional detail strings; only Status and Message vary by kind.
type apiError struct {
	Status  int      `json:"status"`
	Data    any      `json:"data"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	respondJSON(ctx, w, status, apiResponse{Status: status, Data: data, Message: message})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, details ...string) {
	if details == nil {
		details = []string{}
	}
	respondJSON(ctx, w, status, apiError{Status: status, Message: message, Errors: details})
}

// respondFailure maps domain sentinel errors onto the failure taxonomy:
// invalid argument, not found, unauthorized, conflict, internal.
func respondFailure(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, social.ErrInvalidTarget), errors.Is(err, social.ErrSelfSubscription):
		status = http.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, social.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repositories.ErrConflict), errors.Is(err, social.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrRefreshTokenExpired),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	respondError(ctx, w, status, message, err.Error())
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}
