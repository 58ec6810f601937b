package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/command"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	executor *command.Executor
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(executor *command.Executor) *PlayerHandler {
	return &PlayerHandler{
		executor: executor,
	}
}

// Get handles GET /api/v1/players/{name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	reveal := false
	if raw := r.URL.Query().Get("reveal"); raw != "" {
		var err error
		if reveal, err = strconv.ParseBool(raw); err != nil {
			WriteError(w, NewInvalidRequestError("reveal must be a boolean"))
			return
		}
	}

	res, err := h.executor.Whois(r.Context(), caller, command.Whois{
		Target: mux.Vars(r)["name"],
		Reveal: reveal,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromWhois(res))
}

// Link handles POST /api/v1/players/link
func (h *PlayerHandler) Link(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req request.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Handle == "" {
		WriteError(w, NewInvalidRequestError("handle is required"))
		return
	}
	if req.Clan == "" || req.Role == "" {
		WriteError(w, NewInvalidRequestError("clan and role are required"))
		return
	}

	res, err := h.executor.Link(r.Context(), caller, command.Link{
		Contact: model.ContactID(req.ContactID),
		Handle:  req.Handle,
		Clan:    req.Clan,
		Role:    req.Role,
		AltOf:   req.AltOf,
		Hidden:  req.Hidden,
		Slug:    req.Slug,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == registry.LinkCreated {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.LinkFromResult(res))
}

// SetRole handles PATCH /api/v1/players/{name}/clans/{clan}
func (h *PlayerHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req request.SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Role == "" {
		WriteError(w, NewInvalidRequestError("role is required"))
		return
	}

	vars := mux.Vars(r)
	res, err := h.executor.SetRole(r.Context(), caller, command.SetRole{
		Name: vars["name"],
		Clan: vars["clan"],
		Role: req.Role,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoleChangeFromResult(res))
}

// Unlink handles DELETE /api/v1/players/{name}?policy=promote|cascade|reject
func (h *PlayerHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	policy, err := registry.ParseOrphanPolicy(r.URL.Query().Get("policy"))
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.executor.Unlink(r.Context(), caller, command.Unlink{
		Name:   mux.Vars(r)["name"],
		Policy: policy,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UnlinkFromResult(res))
}
