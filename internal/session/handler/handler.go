// Package handler exposes the session lifecycle over HTTP and maps engine
// errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"token-session-service/internal/session/service"
)

// Handler serves the session endpoints. rotateExpiresIn controls whether the
// rotate response exposes the access token lifetime; the establish response
// always does.
type Handler struct {
	engine          *service.Engine
	log             *zap.Logger
	rotateExpiresIn bool
}

// New returns a Handler bound to engine.
func New(engine *service.Engine, log *zap.Logger, rotateExpiresIn bool) *Handler {
	return &Handler{engine: engine, log: log, rotateExpiresIn: rotateExpiresIn}
}

// Register attaches the session routes to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/session", h.Establish).Methods(http.MethodPost)
	r.HandleFunc("/session", h.Rotate).Methods(http.MethodPut)
	r.HandleFunc("/session", h.Revoke).Methods(http.MethodDelete)
	r.HandleFunc("/sessions", h.RevokeAll).Methods(http.MethodDelete)
}

type establishRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

type removedResponse struct {
	Removed int64 `json:"removed"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Establish handles POST /session: verifies credentials and returns a fresh
// token pair.
func (h *Handler) Establish(w http.ResponseWriter, r *http.Request) {
	var req establishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "email and password are required"})
		return
	}

	pair, err := h.engine.Establish(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Rotate handles PUT /session: exchanges the bearer refresh token for a new
// pair. The token rides the Authorization header, same as the revoke
// endpoints; a missing or malformed header is an auth failure, not a bad
// request.
func (h *Handler) Rotate(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	pair, err := h.engine.Rotate(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if h.rotateExpiresIn {
		resp.ExpiresIn = pair.ExpiresIn
	}
	writeJSON(w, http.StatusOK, resp)
}

// Revoke handles DELETE /session: soft-deletes the session named by the
// bearer access token.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	removed, err := h.engine.RevokeSession(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// RevokeAll handles DELETE /sessions: soft-deletes every active session of
// the bearer's user.
func (h *Handler) RevokeAll(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	removed, err := h.engine.RevokeAllForUser(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// writeError maps engine errors to HTTP statuses. Every unauthorized cause
// gets the same body so responses do not leak whether an account exists.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		h.log.Info("request unauthorized",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err),
		)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
	default:
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is case-insensitive; the token must be non-empty.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
