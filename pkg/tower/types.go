package tower

// Options configures which plugin instance a Client is bound to.
type Options struct {
	// InstanceName is the name of the plugin instance in the host registry.
	InstanceName string
}

// AuthorizeOptions are the optional arguments of BuildAuthorizeURL.
type AuthorizeOptions struct {
	State string
	Scope string
}

// OAuthClientCredentials are the OAuth 2 client id and secret of the
// deployment.
type OAuthClientCredentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// UserInfo is the profile of the user owning an access token.
type UserInfo struct {
	Sub         string `json:"sub"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	// UpdatedAt is the last profile update in seconds since the epoch.
	UpdatedAt int64 `json:"updatedAt"`
	// Data holds every response field other than id, name, phone and updated_at.
	Data map[string]any `json:"data"`
}

// TokenIntrospection is the result of introspecting an access token.
type TokenIntrospection struct {
	Active bool   `json:"active"`
	Scope  string `json:"scope"`
	Sub    string `json:"sub"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

const (
	authorizeURLQuery = `
query AuthorizeURL(
  $redirectUri: String!
  $state: String
  $scope: String
) {
  authorizeUrl(redirectUri: $redirectUri, state: $state, scope: $scope)
}
`

	oauthAPIEndpointQuery = `
query OAuthAPIEndpointQuery {
  oauthApiEndpoint
}
`

	oauthClientQuery = `
{
  oauthClient {
    clientId
    clientSecret
  }
}
`
)

type authorizeURLResponse struct {
	AuthorizeURL string `json:"authorizeUrl"`
}

type oauthAPIEndpointResponse struct {
	OAuthAPIEndpoint string `json:"oauthApiEndpoint"`
}

type oauthClientResponse struct {
	OAuthClient OAuthClientCredentials `json:"oauthClient"`
}

type introspectTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Token        string `json:"token"`
}

// introspectTokenResponse lists only the fields that are kept. Anything else
// the server echoes back (username, iss, client_id) is dropped by decoding.
type introspectTokenResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub"`
	Scope  string `json:"scope"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}
