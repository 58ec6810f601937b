package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gideon/internal/api/apierr"
	commonmw "github.com/mcoot/gideon/internal/middleware"
	"github.com/mcoot/gideon/internal/testutil"
)

func TestRecovery_WritesRequestID(t *testing.T) {
	logger := testutil.NopLogger()
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := Recovery(logger)(commonmw.Logging(logger)(panicking))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/size", nil)
	req.Header.Set(commonmw.RequestIDHeader, "6f708192-a3b4-45c6-8708-f90a1b2c3d4e")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeInternalError, resp.Error.Code)
	assert.Equal(t, "Internal server error (request 6f708192-a3b4-45c6-8708-f90a1b2c3d4e)", resp.Error.Message)
}

func TestRecovery_PassesThrough(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
