package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/command"
	"github.com/mcoot/gideon/internal/model"
)

// ClanDirectory lists clans; *registry.Registry satisfies it
type ClanDirectory interface {
	Clans() []model.Clan
	Home() model.GuildID
	Count() int
}

// ClanHandler handles clan-related endpoints
type ClanHandler struct {
	executor  *command.Executor
	directory ClanDirectory
}

// NewClanHandler creates a new clan handler
func NewClanHandler(executor *command.Executor, directory ClanDirectory) *ClanHandler {
	return &ClanHandler{
		executor:  executor,
		directory: directory,
	}
}

// List handles GET /api/v1/clans
func (h *ClanHandler) List(w http.ResponseWriter, r *http.Request) {
	clans := h.directory.Clans()
	home := h.directory.Home()

	resp := response.ClanList{Clans: make([]response.Clan, len(clans))}
	for i := range clans {
		resp.Clans[i] = response.ClanFromModel(&clans[i], home)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Roles handles GET /api/v1/clans/{name}/roles
func (h *ClanHandler) Roles(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	clan, err := h.executor.Roles(r.Context(), caller, command.Roles{Clan: mux.Vars(r)["name"]})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClanFromModel(clan, h.directory.Home()))
}

// Size handles GET /api/v1/clans/{name}/size
func (h *ClanHandler) Size(w http.ResponseWriter, r *http.Request) {
	h.size(w, r, command.Size{Clan: mux.Vars(r)["name"]})
}

// TotalSize handles GET /api/v1/size
func (h *ClanHandler) TotalSize(w http.ResponseWriter, r *http.Request) {
	h.size(w, r, command.Size{All: true})
}

func (h *ClanHandler) size(w http.ResponseWriter, r *http.Request, args command.Size) {
	caller := middleware.GetCaller(r.Context())

	res, err := h.executor.Size(r.Context(), caller, args)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SizeFromResult(res))
}

// Roster handles GET /api/v1/clans/{name}/roster
func (h *ClanHandler) Roster(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, command.Roster{Clan: mux.Vars(r)["name"]})
}

// AllRosters handles GET /api/v1/rosters
func (h *ClanHandler) AllRosters(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, command.Roster{All: true})
}

func (h *ClanHandler) roster(w http.ResponseWriter, r *http.Request, args command.Roster) {
	caller := middleware.GetCaller(r.Context())

	rosters, err := h.executor.Roster(r.Context(), caller, args)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RosterListFromRosters(rosters))
}

// Sync handles POST /api/v1/clans/{name}/sync
func (h *ClanHandler) Sync(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req request.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	args := command.Sync{Clan: mux.Vars(r)["name"]}
	for _, m := range req.Members {
		member := command.SyncMember{Contact: model.ContactID(m.ContactID)}
		for _, id := range m.ChatRoles {
			member.ChatRoles = append(member.ChatRoles, model.ChatRoleID(id))
		}
		args.Members = append(args.Members, member)
	}

	res, err := h.executor.Sync(r.Context(), caller, args)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SyncFromResult(res))
}
