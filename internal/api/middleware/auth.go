package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/gideon/internal/api/apierr"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/services/auth"
)

// ContactHeader names the contact an API-token caller acts as
const ContactHeader = "X-Contact-ID"

type contextKey string

const (
	callerContextKey  contextKey = "caller"
	sessionContextKey contextKey = "session"
)

// Authenticator is the part of *auth.Service the middleware needs
type Authenticator interface {
	ValidateSession(token string) (*auth.Session, error)
	VerifyToken(token string) error
}

// Caller resolves who is calling. A session token yields the session's
// caller; the API token yields the contact in X-Contact-ID, or the operator
// when the header is absent. Anything else is anonymous.
func Caller(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.Anonymous
			ctx := r.Context()

			if token := extractToken(r); token != "" {
				if session, err := authenticator.ValidateSession(token); err == nil {
					caller = session.Caller
					ctx = context.WithValue(ctx, sessionContextKey, session)
				} else if authenticator.VerifyToken(token) == nil {
					contact, err := contactFromHeader(r)
					if err != nil {
						apierr.WriteError(w, err)
						return
					}
					caller = auth.Caller{Contact: contact, Operator: contact == 0}
				}
			}

			ctx = context.WithValue(ctx, callerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that did not present a valid session token
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contactFromHeader(r *http.Request) (model.ContactID, error) {
	raw := strings.TrimSpace(r.Header.Get(ContactHeader))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.NewInvalidRequestError(ContactHeader + " must be a positive integer")
	}
	return model.ContactID(id), nil
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetCaller returns the caller resolved by the Caller middleware
func GetCaller(ctx context.Context) auth.Caller {
	caller, ok := ctx.Value(callerContextKey).(auth.Caller)
	if !ok {
		return auth.Anonymous
	}
	return caller
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}
