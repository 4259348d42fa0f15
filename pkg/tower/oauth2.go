package tower

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuth2Endpoint returns the discovered authorize and token URLs as an
// oauth2.Endpoint. Tower accepts client credentials in the request body.
func (c *Client) OAuth2Endpoint(ctx context.Context) (oauth2.Endpoint, error) {
	authURL, err := c.AuthorizeURL(ctx)
	if err != nil {
		return oauth2.Endpoint{}, err
	}
	tokenURL, err := c.TokenURL(ctx)
	if err != nil {
		return oauth2.Endpoint{}, err
	}

	return oauth2.Endpoint{
		AuthURL:   authURL.String(),
		TokenURL:  tokenURL.String(),
		AuthStyle: oauth2.AuthStyleInParams,
	}, nil
}

// OAuth2Config returns an oauth2.Config for the authorization code flow
// against the deployment, filled with the discovered endpoint and client
// credentials.
func (c *Client) OAuth2Config(ctx context.Context, redirectURL string, scopes ...string) (*oauth2.Config, error) {
	creds, err := c.OAuthClient(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.OAuth2Endpoint(ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}, nil
}
