package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gideon/internal/api/apierr"
	"github.com/mcoot/gideon/internal/middleware"
)

// Recovery turns a panicking handler into a JSON INTERNAL_ERROR carrying the
// request id. The registry lock is released by the panicking mutation's defer,
// so later requests keep working.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	// Logging runs inside recovery, so the id is only on the response headers
	apierr.WriteError(w, apierr.NewInternalError(w.Header().Get(middleware.RequestIDHeader)))
}
