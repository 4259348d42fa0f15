package tower

import (
	"context"
	"fmt"
	"net/url"
)

const (
	endpointFlightKey = "oauthApiEndpoint"
	clientFlightKey   = "oauthClient"
)

// OAuthClient returns the OAuth 2 client credentials of the deployment.
// They are queried on first use and memoized for the lifetime of c.
func (c *Client) OAuthClient(ctx context.Context) (OAuthClientCredentials, error) {
	c.mu.Lock()
	cached := c.oauthClient
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	result, err, _ := c.group.Do(clientFlightKey, func() (any, error) {
		c.mu.Lock()
		cached, generation := c.oauthClient, c.generation
		c.mu.Unlock()
		if cached != nil {
			return *cached, nil
		}

		resp, err := query[oauthClientResponse](ctx, c, oauthClientQuery, nil)
		if err != nil {
			return OAuthClientCredentials{}, fmt.Errorf("failed to query OAuth client: %w", err)
		}

		creds := resp.OAuthClient
		if c.store(generation, func() { c.oauthClient = &creds }) {
			c.logger.Debug("Cached OAuth client",
				"instance", c.instanceName,
				"client_id", creds.ClientID)
		}
		return creds, nil
	})
	if err != nil {
		return OAuthClientCredentials{}, err
	}

	return result.(OAuthClientCredentials), nil
}

// oauthAPIEndpoint returns the OAuth API base endpoint with sub appended to
// its path. The base is queried on first use and memoized for the lifetime
// of c. An empty sub returns a copy of the base.
func (c *Client) oauthAPIEndpoint(ctx context.Context, sub string) (*url.URL, error) {
	if u, err := c.oauthAPIURL(sub); err == nil {
		return u, nil
	}

	result, err, _ := c.group.Do(endpointFlightKey, func() (any, error) {
		c.mu.Lock()
		base, generation := c.oauthAPIBase, c.generation
		c.mu.Unlock()
		if base != nil {
			return base, nil
		}

		resp, err := query[oauthAPIEndpointResponse](ctx, c, oauthAPIEndpointQuery, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to query OAuth API endpoint: %w", err)
		}

		base, err = parseAbsoluteURL(resp.OAuthAPIEndpoint)
		if err != nil {
			return nil, err
		}

		if c.store(generation, func() { c.oauthAPIBase = base }) {
			c.logger.Debug("Cached OAuth API endpoint",
				"instance", c.instanceName,
				"endpoint", base.String())
		}
		return base, nil
	})
	if err != nil {
		return nil, err
	}

	return withSubPath(result.(*url.URL), sub), nil
}

// store runs set under the lock unless Reset was called after generation
// was read. It reports whether set ran.
func (c *Client) store(generation uint64, set func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		c.logger.Debug("Discarded discovery result after reset", "instance", c.instanceName)
		return false
	}
	set()
	return true
}

// oauthAPIURL builds a URL from the memoized base. It fails with
// ErrEndpointNotResolved when discovery has not stored a base yet.
func (c *Client) oauthAPIURL(sub string) (*url.URL, error) {
	c.mu.Lock()
	base := c.oauthAPIBase
	c.mu.Unlock()

	if base == nil {
		return nil, ErrEndpointNotResolved
	}
	return withSubPath(base, sub), nil
}

// Reset drops the memoized OAuth API endpoint and client credentials so the
// next call discovers them again. Discovery calls already running when Reset
// is called do not store their results, and later callers do not join them.
func (c *Client) Reset() {
	c.mu.Lock()
	c.generation++
	c.oauthAPIBase = nil
	c.oauthClient = nil
	c.mu.Unlock()

	c.group.Forget(endpointFlightKey)
	c.group.Forget(clientFlightKey)

	c.logger.Debug("Cleared discovery cache", "instance", c.instanceName)
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidEndpointError{Endpoint: raw, Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &InvalidEndpointError{Endpoint: raw}
	}
	return u, nil
}
