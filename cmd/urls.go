package cmd

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"jettower/pkg/tower"
)

// authorizeURLResult is printed by authorize-url.
type authorizeURLResult struct {
	URL   string `json:"url"`
	State string `json:"state,omitempty"`
}

func (r authorizeURLResult) String() string {
	return r.URL
}

// endpointResult is printed by token-url.
type endpointResult struct {
	URL string `json:"url"`
}

func (r endpointResult) String() string {
	return r.URL
}

type authorizeURLFlags struct {
	RedirectURI string
	State       string
	Scope       string
}

func newAuthorizeURLCmd() *cobra.Command {
	var f authorizeURLFlags

	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the OAuth authorize URL of the deployment",
		Long: `Without --redirect-uri, prints the discovered authorize endpoint.

With --redirect-uri, asks Tower to build a complete authorize URL for that
redirect URI. A random state is generated when --state is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorizeURL(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.RedirectURI, "redirect-uri", "", "Redirect URI registered for the OAuth client")
	cmd.Flags().StringVar(&f.State, "state", "", "Opaque state echoed back to the redirect URI")
	cmd.Flags().StringVar(&f.Scope, "scope", "", "Space separated scopes to request")
	return cmd
}

func runAuthorizeURL(cmd *cobra.Command, f authorizeURLFlags) error {
	client, err := newSessionClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var result authorizeURLResult
	err = withSpinner(cmd, "Resolving authorize URL...", func() error {
		if f.RedirectURI == "" {
			u, err := client.AuthorizeURL(ctx)
			if err != nil {
				return err
			}
			result.URL = u.String()
			return nil
		}

		state := f.State
		if state == "" {
			state = uuid.NewString()
		}
		built, err := client.BuildAuthorizeURL(ctx, f.RedirectURI, tower.AuthorizeOptions{
			State: state,
			Scope: f.Scope,
		})
		if err != nil {
			return err
		}
		result = authorizeURLResult{URL: built, State: state}
		return nil
	})
	if err != nil {
		return err
	}

	return newPrinter(cmd.OutOrStdout()).Print(result, nil)
}

func newTokenURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token-url",
		Short: "Print the OAuth token URL of the deployment",
		Args:  cobra.NoArgs,
		RunE:  runTokenURL,
	}
}

func runTokenURL(cmd *cobra.Command, args []string) error {
	client, err := newSessionClient(cmd)
	if err != nil {
		return err
	}

	var u *url.URL
	err = withSpinner(cmd, "Resolving token URL...", func() error {
		u, err = client.TokenURL(cmd.Context())
		return err
	})
	if err != nil {
		return err
	}

	return newPrinter(cmd.OutOrStdout()).Print(endpointResult{URL: u.String()}, nil)
}
