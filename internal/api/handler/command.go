package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/gideon/internal/api/apierr"
	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/command"
)

// CommandHandler runs free-text command messages
type CommandHandler struct {
	executor *command.Executor
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(executor *command.Executor) *CommandHandler {
	return &CommandHandler{
		executor: executor,
	}
}

// Exec handles POST /api/v1/commands. Each command line gets its own
// result; a failing line does not stop the ones after it.
func (h *CommandHandler) Exec(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req request.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	results := h.executor.ExecuteMessage(r.Context(), caller, req.Text)

	resp := response.CommandResults{Results: make([]response.CommandResult, len(results))}
	for i, res := range results {
		out := response.CommandResult{
			Line:   res.Line,
			Reply:  res.Reply,
			Status: http.StatusOK,
		}
		if res.Err == nil {
			out.Command = res.Kind.String()
		} else {
			out.Error = command.ErrorLine(res.Err)
			out.Status = apierr.Status(res.Err)
		}
		resp.Results[i] = out
	}
	response.JSON(w, http.StatusOK, resp)
}
