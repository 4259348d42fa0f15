package cmd

import (
	"github.com/spf13/cobra"

	pkgstrings "jettower/pkg/strings"
	"jettower/pkg/tower"
)

func newClientCmd() *cobra.Command {
	var showSecret bool

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Show the OAuth client credentials of the deployment",
		Long: `Shows the OAuth client id and secret Tower issued for this deployment.
The secret is redacted unless --show-secret is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, showSecret)
		},
	}

	cmd.Flags().BoolVar(&showSecret, "show-secret", false, "Print the client secret in clear text")
	return cmd
}

func runClient(cmd *cobra.Command, showSecret bool) error {
	client, err := newSessionClient(cmd)
	if err != nil {
		return err
	}

	var creds tower.OAuthClientCredentials
	err = withSpinner(cmd, "Fetching OAuth client...", func() error {
		creds, err = client.OAuthClient(cmd.Context())
		return err
	})
	if err != nil {
		return err
	}

	if !showSecret {
		creds.ClientSecret = pkgstrings.Redact(creds.ClientSecret)
	}

	return newPrinter(cmd.OutOrStdout()).Print(creds, keyValueTable([][2]any{
		{"Client ID", creds.ClientID},
		{"Client Secret", creds.ClientSecret},
	}))
}
