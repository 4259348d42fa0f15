// Package tower is a client for the Tower identity provider.
//
// A Client is bound to one named plugin instance of the host runtime. The
// instance yields the live GraphQL endpoint of a Tower deployment; everything
// else is discovered through it at runtime rather than configured statically:
//
//   - the OAuth API base endpoint (OAuthAPIEndpointQuery)
//   - the OAuth client credentials ({ oauthClient { clientId clientSecret } })
//
// Both discovered values are memoized on the Client for its lifetime. Another
// Client bound to the same instance resolves them again from scratch.
//
// # Operations
//
//   - AuthorizeURL and TokenURL: discovered base + /authorize or /token
//   - BuildAuthorizeURL: authorize URL computed server-side by the AuthorizeURL query
//   - OAuthClient: discovered client id and secret
//   - UserInfo: GET {base}/user with a bearer token
//   - IntrospectToken: POST {base}/introspect with the client credentials
//   - OAuth2Endpoint and OAuth2Config: golang.org/x/oauth2 values built from discovery
//
// # Usage
//
//	reg := plugin.NewStaticRegistry()
//	reg.Register("towerInstance", "https://tower.example.com/graphql")
//
//	client, err := tower.New(reg, tower.Options{InstanceName: "towerInstance"})
//	if err != nil {
//	    return err
//	}
//
//	authorizeURL, err := client.AuthorizeURL(ctx)
//	info, err := client.UserInfo(ctx, accessToken)
//
// No operation retries. Every failure is returned to the caller as is.
package tower
