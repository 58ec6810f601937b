package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mcoot/gideon/internal/testutil"
)

const notchUUID = "069a79f444e94726a5befca90e38aaf5"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL, SessionURL: srv.URL + "/"}, testutil.NopLogger())
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c
}

func TestByNameReturnsCanonicalProfile(t *testing.T) {
	paths := make(chan string, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_, _ = w.Write([]byte(`{"id":"069A79F4-44E9-4726-A5BE-FCA90E38AAF5","name":"Notch"}`))
	})

	p, err := c.ByName(context.Background(), "notch")
	require.NoError(t, err)
	assert.Equal(t, "/users/profiles/minecraft/notch", <-paths)
	assert.Equal(t, Profile{UUID: notchUUID, Name: "Notch"}, p)
}

func TestByUUIDUsesSessionEndpoint(t *testing.T) {
	paths := make(chan string, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_, _ = w.Write([]byte(`{"id":"` + notchUUID + `","name":"Notch"}`))
	})

	p, err := c.ByUUID(context.Background(), "069a79f4-44e9-4726-a5be-fca90e38aaf5")
	require.NoError(t, err)
	assert.Equal(t, "/user/profile/"+notchUUID, <-paths)
	assert.Equal(t, "Notch", p.Name)
}

func TestNonSuccessSignals(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"no content", http.StatusNoContent, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			})

			_, err := c.ByName(context.Background(), "ghost")
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, int32(1), calls.Load(), "lookups are never retried")
		})
	}
}

func TestUnexpectedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ByName(context.Background(), "notch")
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusBadGateway, status.Code)
}

func TestMalformedProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-uuid","name":"x"}`))
	})

	_, err := c.ByName(context.Background(), "notch")
	assert.Error(t, err)
}

func TestByUUIDRejectsInvalidUUID(t *testing.T) {
	c := New(Config{}, testutil.NopLogger())
	_, err := c.ByUUID(context.Background(), "nope")
	assert.Error(t, err)
}

func TestNormalizeUUID(t *testing.T) {
	got, err := NormalizeUUID("069A79F4-44E9-4726-A5BE-FCA90E38AAF5")
	require.NoError(t, err)
	assert.Equal(t, notchUUID, got)

	got, err = NormalizeUUID(notchUUID)
	require.NoError(t, err)
	assert.Equal(t, notchUUID, got)

	_, err = NormalizeUUID("069a79f4")
	assert.Error(t, err)
}
