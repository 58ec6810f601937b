package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gideon/internal/api/request"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/command"
)

func TestClient_SendsCredentials(t *testing.T) {
	var gotAuth, gotContact string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContact = r.Header.Get("X-Contact-ID")
		_ = json.NewEncoder(w).Encode(response.Size{Count: 5})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", 42)
	var size response.Size
	require.NoError(t, c.Get(context.Background(), "/api/v1/size", &size))

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "42", gotContact)
	assert.Equal(t, 5, size.Count)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"insufficient permissions"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", 0).Post(context.Background(), "/api/v1/players/link", map[string]string{}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "insufficient permissions (FORBIDDEN)", apiErr.Error())
}

func TestClient_PlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", 0).Get(context.Background(), "/", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestConfig_TokenFile(t *testing.T) {
	cfg := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, cfg.LoadToken())
	assert.Empty(t, cfg.Token)

	require.NoError(t, cfg.SaveToken("sess_abc"))
	cfg.Token = ""
	require.NoError(t, cfg.LoadToken())
	assert.Equal(t, "sess_abc", cfg.Token)

	require.NoError(t, cfg.ClearToken())
	require.NoError(t, cfg.ClearToken())
	require.NoError(t, cfg.LoadToken())
	assert.Empty(t, cfg.Token)
}

func newTestOutput(format string) (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Output{format: format, w: &buf, errW: &buf}, &buf
}

func TestOutput_Text(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"global size", response.Size{Count: 5}, "Registered players: 5\n"},
		{"clan size", response.Size{Clan: "Alpha", Count: 4}, "Alpha has 4 players\n"},
		{"link", response.Link{UUID: "u", Name: "Dave", Created: true}, "Added Dave (u)\n"},
		{"dedupe", response.Dedupe{Removed: 2}, "Removed 2 duplicate players\n"},
		{"role change", response.RoleChange{Name: "Alice", Clan: "Alpha", From: "Leader", To: "Member"}, "Alice in Alpha: Leader -> Member\n"},
		{
			"sync",
			response.Sync{Clan: "Alpha", Changed: 1, Unchanged: 2, Unknown: 3, Failed: []int64{503}},
			"Synced Alpha: 1 changed, 2 unchanged, 3 not registered\n  no clan role: 503\n",
		},
		{"no backups", response.BackupList{}, "No backups\n"},
		{"health", HealthResult{Status: "ok", Clans: 3, Players: 5}, "Status: ok (3 clans, 5 players)\n"},
		{
			"rosters",
			response.RosterList{Rosters: []response.Roster{
				{Clan: "Alpha", Chunks: []string{"one", "two"}},
				{Clan: "Bravo", Chunks: []string{"three"}},
			}},
			"one\n---\ntwo\n\nthree\n",
		},
		{
			"commands",
			response.CommandResults{Results: []response.CommandResult{
				{Line: "gd: size", Reply: &command.Reply{Lines: []string{"5 players"}}},
				{Line: "gd: nope", Error: "unknown command"},
			}},
			"> gd: size\n5 players\n\n> gd: nope\nunknown command\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf := newTestOutput("text")
			out.Print(tt.data)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutput_JSON(t *testing.T) {
	out, buf := newTestOutput("json")
	out.Print(response.Size{Clan: "Alpha", Count: 4})

	var got response.Size
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, response.Size{Clan: "Alpha", Count: 4}, got)

	buf.Reset()
	out.PrintError(errors.New("boom"))
	assert.JSONEq(t, `{"error":{"message":"boom"}}`, buf.String())
}

func TestParseSyncMembers(t *testing.T) {
	members, err := parseSyncMembers([]string{"502=1001", "503=7,1002"})
	require.NoError(t, err)
	assert.Equal(t, []request.SyncMember{
		{ContactID: 502, ChatRoles: []int64{1001}},
		{ContactID: 503, ChatRoles: []int64{7, 1002}},
	}, members)

	for _, bad := range []string{"502", "502=", "bob=1001", "502=leader", "-1=5"} {
		_, err := parseSyncMembers([]string{bad})
		assert.Error(t, err, bad)
	}
}
