package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gideon/internal/api"
	"github.com/mcoot/gideon/internal/api/response"
	"github.com/mcoot/gideon/internal/factory"
	"github.com/mcoot/gideon/internal/testutil"
)

const daveUUID = "6f708192a3b445c6c708f90a1b2c3d4e"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "gideon-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gideon")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// run uses whatever token is saved in the token file
func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = cleanEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runAs authenticates with the API token on behalf of contact
func (r *cliRunner) runAs(contact int64, args ...string) (string, error) {
	fullArgs := append([]string{
		"--token", testutil.APIToken,
		"--contact", strconv.FormatInt(contact, 10),
	}, args...)
	return r.run(fullArgs...)
}

// cleanEnv drops GIDEON_* variables so the host cannot leak a token or contact
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if len(kv) >= 7 && kv[:7] == "GIDEON_" {
			continue
		}
		env = append(env, kv)
	}
	return env
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.TestApp
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app, err := factory.NewTestApp(context.Background())
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: app.AuthService,
		Executor:    app.Executor,
		Clans:       app.Registry,
		Gatherer:    app.Metrics,
		HTTPMetrics: app.HTTPMetrics,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Players)
}

func TestCLI_PublicQueries(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("clans")
	require.NoError(t, err, "output: %s", output)
	var clans response.ClanList
	require.NoError(t, json.Unmarshal([]byte(output), &clans))
	require.Len(t, clans.Clans, 3)
	assert.True(t, clans.Clans[2].Home)

	output, err = cli.run("size", "alpha")
	require.NoError(t, err, "output: %s", output)
	var size response.Size
	require.NoError(t, json.Unmarshal([]byte(output), &size))
	assert.Equal(t, response.Size{Clan: "Alpha", Count: 4}, size)

	output, err = cli.run("whois", "bob_alt")
	require.NoError(t, err, "output: %s", output)
	var player response.Player
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, testutil.BobAltUUID, player.UUID)
	assert.True(t, player.Alt)
	assert.Equal(t, []string{"Bob"}, player.Parents)

	// Rosters need a manager
	output, err = cli.run("roster", "alpha")
	require.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")
}

func TestCLI_SessionFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runAs(int64(testutil.ManagerContact), "login")
	require.NoError(t, err, "output: %s", output)

	var session response.Session
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, "manager", session.Level)
	assert.NotEmpty(t, session.SessionToken)

	// Token should be saved in token file
	output, err = cli.run("roster", "all")
	require.NoError(t, err, "output: %s", output)
	var rosters response.RosterList
	require.NoError(t, json.Unmarshal([]byte(output), &rosters))
	assert.Len(t, rosters.Rosters, 3)

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Logged out", msg.Message)

	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_LinkAndUnlink(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	ts.app.MockLookup.Add(daveUUID, "Dave")

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runAs(int64(testutil.ManagerContact), "link", "504", "Dave", "alpha", "member", "--slug", "@dave")
	require.NoError(t, err, "output: %s", output)

	var link response.Link
	require.NoError(t, json.Unmarshal([]byte(output), &link))
	assert.Equal(t, response.Link{UUID: daveUUID, Name: "Dave", Created: true}, link)

	// Managers cannot unlink
	output, err = cli.runAs(int64(testutil.ManagerContact), "unlink", "Dave")
	require.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	output, err = cli.runAs(int64(testutil.RootContact), "unlink", "Dave")
	require.NoError(t, err, "output: %s", output)

	var unlink response.Unlink
	require.NoError(t, json.Unmarshal([]byte(output), &unlink))
	assert.Equal(t, daveUUID, unlink.UUID)

	output, err = cli.run("whois", "Dave")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_NOT_FOUND")
}

func TestCLI_RoleChanges(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runAs(int64(testutil.ManagerContact), "setrole", "alice", "alpha", "member")
	require.NoError(t, err, "output: %s", output)

	var change response.RoleChange
	require.NoError(t, json.Unmarshal([]byte(output), &change))
	assert.Equal(t, "Leader", change.From)
	assert.Equal(t, "Member", change.To)

	output, err = cli.runAs(int64(testutil.ManagerContact), "sync", "alpha", "501=1001", "502=1001")
	require.NoError(t, err, "output: %s", output)

	var sync response.Sync
	require.NoError(t, json.Unmarshal([]byte(output), &sync))
	assert.Equal(t, response.Sync{Clan: "Alpha", Changed: 2}, sync)
}

func TestCLI_Exec(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("exec", "gd: size all\ngd: roles bravo")
	require.NoError(t, err, "output: %s", output)

	var results response.CommandResults
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results.Results, 2)
	for _, r := range results.Results {
		assert.Equal(t, http.StatusOK, r.Status, r.Line)
		assert.Empty(t, r.Error)
	}
}

func TestCLI_Maintenance(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	root := int64(testutil.RootContact)

	output, err := cli.runAs(root, "backup")
	require.NoError(t, err, "output: %s", output)
	var backup response.Backup
	require.NoError(t, json.Unmarshal([]byte(output), &backup))
	assert.NotEmpty(t, backup.Name)

	output, err = cli.runAs(root, "backups")
	require.NoError(t, err, "output: %s", output)
	var backups response.BackupList
	require.NoError(t, json.Unmarshal([]byte(output), &backups))
	require.Len(t, backups.Backups, 1)
	assert.Equal(t, backup.Name, backups.Backups[0].Name)

	output, err = cli.runAs(root, "dedupe")
	require.NoError(t, err, "output: %s", output)
	var dedupe response.Dedupe
	require.NoError(t, json.Unmarshal([]byte(output), &dedupe))
	assert.Zero(t, dedupe.Removed)
}
