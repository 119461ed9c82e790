package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"dashboard-api/internal/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/internal/service"
	"dashboard-api/pkg/apierror"
)

type AuthHandler struct {
	auth  *service.AuthService
	audit *service.AuditService
}

func NewAuthHandler(auth *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		// Unknown user and wrong password produce the same response.
		writeError(w, apierror.New("UNAUTHORIZED", "invalid credentials", "", http.StatusUnauthorized))
		return
	}

	tokens, err := h.auth.IssueTokens(r.Context(), *user)
	if err != nil {
		writeError(w, err)
		return
	}

	h.record(r, user.ID, "auth.login", user.Username)
	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.auth.CreateUser(r.Context(), payload.Username, payload.Password, payload.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	h.record(r, user.ID, "auth.register", user.Username)
	writeSuccess(w, http.StatusCreated, user.Public(), nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refresh_token is required", "refresh_token", http.StatusBadRequest))
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	h.record(r, tokens.User.ID, "auth.refresh", "")
	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := h.auth.Logout(r.Context(), payload.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	if user, ok := middleware.UserFromContext(r.Context()); ok {
		h.record(r, user.ID, "auth.logout", "")
	}
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	writeSuccess(w, http.StatusOK, user.Public(), nil)
}

// record writes an audit entry; a failure is logged but never fails the
// request that triggered it.
func (h *AuthHandler) record(r *http.Request, actorID string, action string, detail string) {
	if err := h.audit.Record(r.Context(), actorID, action, detail); err != nil {
		slog.Warn("audit record failed", "action", action, "error", err)
	}
}
