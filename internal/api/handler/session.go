package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/services/auth"
)

// SessionHandler exchanges the API token for session tokens
type SessionHandler struct {
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *auth.Service) *SessionHandler {
	return &SessionHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/sessions
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Token == "" {
		WriteError(w, NewInvalidRequestError("token is required"))
		return
	}
	if req.ContactID < 0 {
		WriteError(w, NewInvalidRequestError("contact_id must not be negative"))
		return
	}

	session, err := h.authService.Login(req.Token, model.ContactID(req.ContactID))
	if err != nil {
		WriteError(w, err)
		return
	}

	level := h.authService.LevelOf(session.Caller)
	response.JSON(w, http.StatusCreated, response.SessionFromAuth(session, level))
}

// Logout handles DELETE /api/v1/sessions
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	h.authService.InvalidateSession(session.Token)
	response.NoContent(w)
}
