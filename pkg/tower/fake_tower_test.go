package tower

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"jettower/pkg/plugin"
)

// fakeTower serves the GraphQL discovery endpoint and the OAuth REST API of a
// Tower deployment. Fields below mu are read by handlers; tests change them
// through the set* and failGraphQL helpers.
type fakeTower struct {
	server *httptest.Server

	endpointQueries  atomic.Int32
	clientQueries    atomic.Int32
	authorizeQueries atomic.Int32

	mu            sync.Mutex
	lastVariables map[string]any
	lastHeaders   http.Header
	lastBody      []byte

	// oauthAPIEndpoint overrides the discovered endpoint. Empty means
	// server.URL + "/oauth".
	oauthAPIEndpoint string

	graphQLStatus int
	graphQLBody   string

	userHandler       http.HandlerFunc
	introspectHandler http.HandlerFunc

	// beforeGraphQL runs at the start of every GraphQL call, outside mu.
	beforeGraphQL func()
}

func newFakeTower(t *testing.T) *fakeTower {
	t.Helper()

	f := &fakeTower{}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", f.handleGraphQL)
	mux.HandleFunc("/oauth/user", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		handler := f.userHandler
		f.mu.Unlock()
		if handler != nil {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/oauth/introspect", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		handler := f.introspectHandler
		f.mu.Unlock()
		if handler != nil {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTower) graphQLURL() string {
	return f.server.URL + "/graphql"
}

func (f *fakeTower) registry() *plugin.StaticRegistry {
	reg := plugin.NewStaticRegistry()
	reg.Register("tower", f.graphQLURL())
	return reg
}

func (f *fakeTower) newClient(t *testing.T) *Client {
	t.Helper()

	c, err := New(f.registry(), Options{InstanceName: "tower"}, WithHTTPClient(f.server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func (f *fakeTower) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHeaders = r.Header.Clone()
	f.lastBody = body
}

func (f *fakeTower) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	before := f.beforeGraphQL
	f.mu.Unlock()
	if before != nil {
		before()
	}

	body, _ := io.ReadAll(r.Body)

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.lastHeaders = r.Header.Clone()
	f.lastBody = body
	f.lastVariables = req.Variables
	status, override := f.graphQLStatus, f.graphQLBody
	endpoint := f.oauthAPIEndpoint
	f.mu.Unlock()

	if status != 0 || override != "" {
		if status != 0 {
			w.WriteHeader(status)
		}
		_, _ = io.WriteString(w, override)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(req.Query, "oauthApiEndpoint"):
		f.endpointQueries.Add(1)
		if endpoint == "" {
			endpoint = f.server.URL + "/oauth"
		}
		writeJSON(w, map[string]any{"data": map[string]any{"oauthApiEndpoint": endpoint}})
	case strings.Contains(req.Query, "oauthClient"):
		f.clientQueries.Add(1)
		writeJSON(w, map[string]any{"data": map[string]any{
			"oauthClient": map[string]any{"clientId": "client-1", "clientSecret": "secret-1"},
		}})
	case strings.Contains(req.Query, "authorizeUrl"):
		f.authorizeQueries.Add(1)
		writeJSON(w, map[string]any{"data": map[string]any{
			"authorizeUrl": "https://id.example.com/oauth/authorize?client_id=client-1",
		}})
	default:
		writeJSON(w, map[string]any{"errors": []map[string]any{{"message": "unknown query"}}})
	}
}

func (f *fakeTower) setOAuthAPIEndpoint(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oauthAPIEndpoint = endpoint
}

// failGraphQL makes every GraphQL call answer with status and body. A zero
// status with an empty body restores normal answers.
func (f *fakeTower) failGraphQL(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graphQLStatus = status
	f.graphQLBody = body
}

func (f *fakeTower) setBeforeGraphQL(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeGraphQL = hook
}

func (f *fakeTower) setUserHandler(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userHandler = h
}

func (f *fakeTower) setIntrospectHandler(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.introspectHandler = h
}

func (f *fakeTower) variables() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastVariables
}

func (f *fakeTower) headers() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeaders
}

func (f *fakeTower) body() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
