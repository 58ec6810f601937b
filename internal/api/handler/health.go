package handler

import (
	"net/http"

	"github.com/mcoot/gideon/internal/api/response"
)

// HealthHandler reports liveness along with the size of the loaded registry
type HealthHandler struct {
	directory ClanDirectory
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(directory ClanDirectory) *HealthHandler {
	return &HealthHandler{directory: directory}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:  "ok",
		Clans:   len(h.directory.Clans()),
		Players: h.directory.Count(),
	})
}
