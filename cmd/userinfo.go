package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"jettower/pkg/tower"
)

// EnvAccessToken supplies the access token when --token is not given.
const EnvAccessToken = "JETTOWER_ACCESS_TOKEN"

// accessToken returns the --token value or the JETTOWER_ACCESS_TOKEN
// environment variable.
func accessToken(token string) (string, error) {
	if token != "" {
		return token, nil
	}
	if token = os.Getenv(EnvAccessToken); token != "" {
		return token, nil
	}
	return "", errors.New("an access token is required: pass --token or set " + EnvAccessToken)
}

func newUserInfoCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "userinfo",
		Short: "Show the profile of the user owning an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserInfo(cmd, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (env: "+EnvAccessToken+")")
	return cmd
}

func runUserInfo(cmd *cobra.Command, token string) error {
	token, err := accessToken(token)
	if err != nil {
		return err
	}

	client, err := newSessionClient(cmd)
	if err != nil {
		return err
	}

	var info *tower.UserInfo
	err = withSpinner(cmd, "Fetching user info...", func() error {
		info, err = client.UserInfo(cmd.Context(), token)
		return err
	})
	if err != nil {
		return err
	}

	return newPrinter(cmd.OutOrStdout()).Print(info, keyValueTable(userInfoRows(info)))
}

func userInfoRows(info *tower.UserInfo) [][2]any {
	rows := [][2]any{
		{"Subject", info.Sub},
		{"Name", info.Name},
		{"Phone", info.PhoneNumber},
		{"Updated", formatEpoch(info.UpdatedAt)},
	}

	keys := make([]string, 0, len(info.Data))
	for key := range info.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rows = append(rows, [2]any{key, fmt.Sprintf("%v", info.Data[key])})
	}
	return rows
}

func formatEpoch(seconds int64) string {
	if seconds == 0 {
		return "-"
	}
	return time.Unix(seconds, 0).UTC().Format(time.RFC3339)
}
