package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/service"
)

// AuthHandler exposes the registration endpoint that turns a GitHub OAuth
// authorization code into a session token.
//
// The frontend owns the first half of the OAuth dance (redirect to GitHub,
// receive the callback); this server only ever sees the resulting code.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// registerRequest is the expected body of POST /register.
//
// WHY A POINTER FIELD?
// JSON decoding can't tell "field absent" from "zero value" with a plain
// string. A *string is nil when the field was missing entirely, which is a
// validation error distinct from an empty code.
type registerRequest struct {
	Code *string `json:"code"`
}

// HandleRegister completes a GitHub login.
//
// HTTP: POST /register
// REQUEST BODY: {"code": "<authorization code from GitHub's callback>"}
// RESPONSE: {"token": "<30-day session JWT>"}
//
// Failure modes: 400 when the body is malformed or the code is missing/empty,
// 502 when GitHub's endpoints fail, 400 when GitHub returns a profile we
// can't anchor an account on.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}
	if req.Code == nil {
		writeError(w, apperror.ValidationFailed("code", "code is required"))
		return
	}

	token, err := h.auth.Register(r.Context(), *req.Code)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			h.logger.Error("registration failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
