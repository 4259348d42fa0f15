package tower

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jettower/pkg/plugin"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless WithUserAgent is used.
	DefaultUserAgent = "jettower"

	authorizePath  = "/authorize"
	tokenPath      = "/token"
	userPath       = "/user"
	introspectPath = "/introspect"

	opUserInfo   = "get user info"
	opIntrospect = "introspect token"
)

// Client talks to one Tower deployment through a host plugin instance.
//
// The OAuth API endpoint and the OAuth client credentials are discovered
// lazily and memoized per Client. A Client is safe for concurrent use.
type Client struct {
	instanceName string
	instance     plugin.Instance

	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string

	mu           sync.Mutex
	oauthAPIBase *url.URL
	oauthClient  *OAuthClientCredentials
	// generation is bumped by Reset so running discovery calls can tell
	// their result is stale.
	generation uint64

	// group collapses concurrent discovery queries into one.
	group singleflight.Group
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a Client bound to the plugin instance named in opts.
// It fails with a *plugin.NotFoundError when the registry does not know the
// instance.
func New(registry plugin.Registry, opts Options, clientOpts ...ClientOption) (*Client, error) {
	if registry == nil {
		return nil, errors.New("plugin registry is required")
	}
	if opts.InstanceName == "" {
		return nil, errors.New("plugin instance name is required")
	}

	instance, err := registry.Lookup(opts.InstanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up plugin %s: %w", opts.InstanceName, err)
	}

	c := &Client{
		instanceName: opts.InstanceName,
		instance:     instance,
		httpClient:   &http.Client{Timeout: DefaultHTTPTimeout},
		logger:       slog.Default(),
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range clientOpts {
		opt(c)
	}

	return c, nil
}

// InstanceName returns the name of the plugin instance c is bound to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// AuthorizeURL returns the OAuth 2 authorize endpoint of the deployment.
func (c *Client) AuthorizeURL(ctx context.Context) (*url.URL, error) {
	return c.oauthAPIEndpoint(ctx, authorizePath)
}

// TokenURL returns the OAuth 2 token endpoint of the deployment.
func (c *Client) TokenURL(ctx context.Context) (*url.URL, error) {
	return c.oauthAPIEndpoint(ctx, tokenPath)
}

// BuildAuthorizeURL asks Tower to build a complete authorize URL for
// redirectURI. State and scope are only sent when set. It does not use or
// populate the memoized OAuth API endpoint.
func (c *Client) BuildAuthorizeURL(ctx context.Context, redirectURI string, opts AuthorizeOptions) (string, error) {
	if redirectURI == "" {
		return "", errors.New("redirect URI is required")
	}

	variables := map[string]any{"redirectUri": redirectURI}
	if opts.State != "" {
		variables["state"] = opts.State
	}
	if opts.Scope != "" {
		variables["scope"] = opts.Scope
	}

	resp, err := query[authorizeURLResponse](ctx, c, authorizeURLQuery, variables)
	if err != nil {
		return "", fmt.Errorf("failed to query authorize URL: %w", err)
	}
	return resp.AuthorizeURL, nil
}

// UserInfo returns the profile of the user owning accessToken.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	u, err := c.oauthAPIEndpoint(ctx, userPath)
	if err != nil {
		return nil, err
	}

	body, err := c.doREST(ctx, http.MethodGet, u, opUserInfo, accessToken, nil)
	if err != nil {
		return nil, err
	}

	info, err := decodeUserInfo(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return info, nil
}

// IntrospectToken introspects accessToken using the deployment's OAuth
// client credentials.
func (c *Client) IntrospectToken(ctx context.Context, accessToken string) (*TokenIntrospection, error) {
	creds, err := c.OAuthClient(ctx)
	if err != nil {
		return nil, err
	}

	u, err := c.oauthAPIEndpoint(ctx, introspectPath)
	if err != nil {
		return nil, err
	}

	payload := introspectTokenRequest{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Token:        accessToken,
	}
	body, err := c.doREST(ctx, http.MethodPost, u, opIntrospect, "", payload)
	if err != nil {
		return nil, err
	}

	var resp introspectTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token introspection: %w", err)
	}

	return &TokenIntrospection{
		Active: resp.Active,
		Scope:  resp.Scope,
		Sub:    resp.Sub,
		Exp:    resp.Exp,
		Iat:    resp.Iat,
	}, nil
}

// doREST performs a JSON request against the OAuth API and returns the body
// of a 2xx response. Any other status yields a *RequestError for op.
func (c *Client) doREST(ctx context.Context, method string, u *url.URL, op, bearer string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	c.setJSONHeaders(req)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug("OAuth API request failed",
			"instance", c.instanceName,
			"operation", op,
			"status", resp.StatusCode,
			"body", string(body))
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func (c *Client) setJSONHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// decodeUserInfo maps the fixed user fields and keeps every other field
// verbatim in Data.
func decodeUserInfo(body []byte) (*UserInfo, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	info := &UserInfo{Data: make(map[string]any)}
	for key, raw := range fields {
		var err error
		switch key {
		case "id":
			info.Sub, err = decodeStringField(raw)
		case "name":
			info.Name, err = decodeStringField(raw)
		case "phone":
			info.PhoneNumber, err = decodeStringField(raw)
		case "updated_at":
			info.UpdatedAt, err = decodeTimestamp(raw)
		default:
			var value any
			err = json.Unmarshal(raw, &value)
			info.Data[key] = value
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}

	return info, nil
}

// decodeStringField accepts a JSON string, number or null.
func decodeStringField(raw json.RawMessage) (string, error) {
	var value any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return "", err
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unexpected JSON value %s", string(raw))
	}
}

// decodeTimestamp converts an RFC 3339 string or a number of epoch seconds
// into whole seconds since the epoch, rounding down.
func decodeTimestamp(raw json.RawMessage) (int64, error) {
	var value any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return 0, err
	}

	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
		if err != nil {
			return 0, err
		}
		return t.Unix(), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return int64(math.Floor(f)), nil
	default:
		return 0, fmt.Errorf("unexpected JSON value %s", string(raw))
	}
}
