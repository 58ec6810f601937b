package handler

import (
	"net/http"

	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/command"
)

// RegistryHandler handles maintenance endpoints
type RegistryHandler struct {
	executor *command.Executor
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(executor *command.Executor) *RegistryHandler {
	return &RegistryHandler{
		executor: executor,
	}
}

// Backup handles POST /api/v1/registry/backup
func (h *RegistryHandler) Backup(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	b, err := h.executor.Backup(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.BackupFromStorage(b))
}

// Backups handles GET /api/v1/registry/backups
func (h *RegistryHandler) Backups(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	backups, err := h.executor.Backups(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.BackupList{Backups: make([]response.Backup, len(backups))}
	for i, b := range backups {
		resp.Backups[i] = response.BackupFromStorage(b)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Update handles POST /api/v1/registry/update
func (h *RegistryHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	res, err := h.executor.Update(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UpdateFromResult(res))
}

// Dedupe handles POST /api/v1/registry/dedupe
func (h *RegistryHandler) Dedupe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	n, err := h.executor.Dedupe(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Dedupe{Removed: n})
}
