package cmd

import (
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"jettower/pkg/tower"
)

func newIntrospectCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Introspect an access token",
		Long: `Introspects an access token with the deployment's OAuth client
credentials and reports whether it is active.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(cmd, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (env: "+EnvAccessToken+")")
	return cmd
}

func runIntrospect(cmd *cobra.Command, token string) error {
	token, err := accessToken(token)
	if err != nil {
		return err
	}

	client, err := newSessionClient(cmd)
	if err != nil {
		return err
	}

	var result *tower.TokenIntrospection
	err = withSpinner(cmd, "Introspecting token...", func() error {
		result, err = client.IntrospectToken(cmd.Context(), token)
		return err
	})
	if err != nil {
		return err
	}

	status := text.FgRed.Sprint("inactive")
	if result.Active {
		status = text.FgGreen.Sprint("active")
	}

	return newPrinter(cmd.OutOrStdout()).Print(result, keyValueTable([][2]any{
		{"Status", status},
		{"Subject", result.Sub},
		{"Scope", result.Scope},
		{"Issued", formatEpoch(result.Iat)},
		{"Expires", formatEpoch(result.Exp)},
	}))
}
