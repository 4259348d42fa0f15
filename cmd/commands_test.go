package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientSecret = "s3cr3t-value-0001"

// fakeTower answers the discovery queries and the OAuth REST API.
type fakeTower struct {
	server *httptest.Server

	endpointQueries atomic.Int32

	mu            sync.Mutex
	lastVariables map[string]any
	lastAuth      string
	graphQLStatus int
}

func newFakeTower(t *testing.T) *fakeTower {
	t.Helper()

	f := &fakeTower{}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", f.handleGraphQL)
	mux.HandleFunc("/oauth/user", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.mu.Unlock()
		writeJSON(w, map[string]any{
			"id":         "u-1",
			"name":       "Ann",
			"phone":      "+100",
			"updated_at": "2024-01-02T03:04:05Z",
			"email":      "ann@example.com",
		})
	})
	mux.HandleFunc("/oauth/introspect", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"active": true, "sub": "u-1", "scope": "openid", "exp": 200, "iat": 100, "jti": "x"})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTower) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.lastVariables = req.Variables
	status := f.graphQLStatus
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "upstream unavailable")
		return
	}

	switch {
	case strings.Contains(req.Query, "oauthApiEndpoint"):
		f.endpointQueries.Add(1)
		writeJSON(w, map[string]any{"data": map[string]any{"oauthApiEndpoint": f.server.URL + "/oauth"}})
	case strings.Contains(req.Query, "oauthClient"):
		writeJSON(w, map[string]any{"data": map[string]any{
			"oauthClient": map[string]any{"clientId": "client-1", "clientSecret": testClientSecret},
		}})
	case strings.Contains(req.Query, "authorizeUrl"):
		writeJSON(w, map[string]any{"data": map[string]any{"authorizeUrl": "https://id.example.com/authorize?client_id=client-1"}})
	default:
		writeJSON(w, map[string]any{"errors": []map[string]any{{"message": "unknown query"}}})
	}
}

func (f *fakeTower) variables() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastVariables
}

func (f *fakeTower) authorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *fakeTower) fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graphQLStatus = status
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeTestConfig writes a configuration pointing the "tower" instance at f.
func writeTestConfig(t *testing.T, f *fakeTower) string {
	t.Helper()

	content := "defaultInstance: tower\n" +
		"httpTimeout: 5s\n" +
		"instances:\n" +
		"  - name: tower\n" +
		"    endpoint: " + f.server.URL + "/graphql\n" +
		"  - name: other\n" +
		"    endpoint: https://other.example.com/graphql\n"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestInstancesCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("table", func(t *testing.T) {
		out, err := executeCommand(t, "instances", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "tower")
		assert.Contains(t, out, "https://other.example.com/graphql")
	})

	t.Run("json", func(t *testing.T) {
		out, err := executeCommand(t, "instances", "--config", path, "-o", "json")
		require.NoError(t, err)

		var got []instanceInfo
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []instanceInfo{
			{Name: "tower", Endpoint: f.server.URL + "/graphql", Default: true},
			{Name: "other", Endpoint: "https://other.example.com/graphql"},
		}, got)
	})

	t.Run("no configuration file", func(t *testing.T) {
		out, err := executeCommand(t, "instances", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Contains(t, out, "No instances configured")
	})
}

func TestTokenURLCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	out, err := executeCommand(t, "token-url", "--config", path, "-q")
	require.NoError(t, err)
	assert.Equal(t, f.server.URL+"/oauth/token\n", out)
}

func TestAuthorizeURLCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("discovered endpoint", func(t *testing.T) {
		out, err := executeCommand(t, "authorize-url", "--config", path, "-q")
		require.NoError(t, err)
		assert.Equal(t, f.server.URL+"/oauth/authorize\n", out)
	})

	t.Run("built by tower with explicit state", func(t *testing.T) {
		out, err := executeCommand(t, "authorize-url", "--config", path, "-o", "json",
			"--redirect-uri", "https://app.example.com/cb", "--state", "s1", "--scope", "openid")
		require.NoError(t, err)

		var got authorizeURLResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "https://id.example.com/authorize?client_id=client-1", got.URL)
		assert.Equal(t, "s1", got.State)
		assert.Equal(t, map[string]any{
			"redirectUri": "https://app.example.com/cb",
			"state":       "s1",
			"scope":       "openid",
		}, f.variables())
	})

	t.Run("generated state", func(t *testing.T) {
		out, err := executeCommand(t, "authorize-url", "--config", path, "-o", "yaml",
			"--redirect-uri", "https://app.example.com/cb")
		require.NoError(t, err)
		assert.Contains(t, out, "https://id.example.com/authorize?client_id=client-1")

		state, ok := f.variables()["state"].(string)
		require.True(t, ok)
		_, err = uuid.Parse(state)
		assert.NoError(t, err)
		assert.NotContains(t, f.variables(), "scope")
	})
}

func TestClientCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("redacts the secret", func(t *testing.T) {
		out, err := executeCommand(t, "client", "--config", path, "-q")
		require.NoError(t, err)
		assert.Contains(t, out, "client-1")
		assert.Contains(t, out, "s3cr*")
		assert.NotContains(t, out, testClientSecret)
	})

	t.Run("shows the secret on request", func(t *testing.T) {
		out, err := executeCommand(t, "client", "--config", path, "-o", "yaml", "--show-secret")
		require.NoError(t, err)
		assert.Contains(t, out, "clientId: client-1")
		assert.Contains(t, out, "clientSecret: "+testClientSecret)
	})
}

func TestUserInfoCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("token from environment", func(t *testing.T) {
		t.Setenv(EnvAccessToken, "env-token")

		out, err := executeCommand(t, "userinfo", "--config", path, "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, "Bearer env-token", f.authorization())

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "u-1", got["sub"])
		assert.Equal(t, "+100", got["phoneNumber"])
		assert.Equal(t, float64(1704164645), got["updatedAt"])
		assert.Equal(t, map[string]any{"email": "ann@example.com"}, got["data"])
	})

	t.Run("table", func(t *testing.T) {
		out, err := executeCommand(t, "userinfo", "--config", path, "-q", "--token", "flag-token")
		require.NoError(t, err)
		assert.Equal(t, "Bearer flag-token", f.authorization())
		assert.Contains(t, out, "2024-01-02T03:04:05Z")
		assert.Contains(t, out, "ann@example.com")
	})

	t.Run("missing token", func(t *testing.T) {
		t.Setenv(EnvAccessToken, "")

		_, err := executeCommand(t, "userinfo", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvAccessToken)
	})
}

func TestIntrospectCommand(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("template", func(t *testing.T) {
		out, err := executeCommand(t, "introspect", "--config", path, "--token", "tok",
			"--template", `{{ .sub | upper }} {{ .active }}`)
		require.NoError(t, err)
		assert.Equal(t, "U-1 true\n", out)
	})

	t.Run("json keeps the known fields", func(t *testing.T) {
		out, err := executeCommand(t, "introspect", "--config", path, "--token", "tok", "-o", "json")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, map[string]any{
			"active": true, "sub": "u-1", "scope": "openid", "exp": float64(200), "iat": float64(100),
		}, got)
	})
}

func TestCommandErrors(t *testing.T) {
	f := newFakeTower(t)
	path := writeTestConfig(t, f)

	t.Run("unknown instance", func(t *testing.T) {
		_, err := executeCommand(t, "token-url", "--config", path, "-i", "prod")
		require.Error(t, err)
		assert.Equal(t, ExitCodeConfigError, getExitCode(err))
	})

	t.Run("no instance selected", func(t *testing.T) {
		content := "instances:\n" +
			"  - name: a\n    endpoint: https://a.example.com/graphql\n" +
			"  - name: b\n    endpoint: https://b.example.com/graphql\n"
		ambiguous := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(ambiguous, []byte(content), 0o644))

		_, err := executeCommand(t, "token-url", "--config", ambiguous)
		require.Error(t, err)
		assert.Equal(t, ExitCodeConfigError, getExitCode(err))
	})

	t.Run("invalid configuration", func(t *testing.T) {
		broken := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(broken, []byte("instances: ["), 0o644))

		_, err := executeCommand(t, "instances", "--config", broken)
		require.Error(t, err)
		assert.Equal(t, ExitCodeConfigError, getExitCode(err))
	})

	t.Run("upstream failure", func(t *testing.T) {
		f.fail(http.StatusBadGateway)
		defer f.fail(0)

		_, err := executeCommand(t, "token-url", "--config", path, "-q")
		require.Error(t, err)
		assert.Equal(t, ExitCodeUpstreamError, getExitCode(err))
	})

	t.Run("unsupported output format", func(t *testing.T) {
		_, err := executeCommand(t, "token-url", "--config", path, "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}
