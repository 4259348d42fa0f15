package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"jettower/internal/config"
)

type configInitFlags struct {
	Name     string
	Endpoint string
	Force    bool
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the jettower configuration file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var f configInitFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with one plugin instance",
		Long: `Writes a configuration file with a single plugin instance that is also the
default instance. An existing file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "tower", "Name of the plugin instance")
	cmd.Flags().StringVar(&f.Endpoint, "endpoint", "", "GraphQL endpoint of the Tower deployment")
	cmd.Flags().BoolVar(&f.Force, "force", false, "Overwrite an existing configuration file")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}

func runConfigInit(cmd *cobra.Command, f configInitFlags) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if !f.Force {
		if _, err := os.Stat(path); err == nil {
			configErr := config.NewConfigurationError(path, "io", "configuration file already exists")
			configErr.Suggestions = []string{"pass --force to overwrite it"}
			return configErr
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	cfg := config.GetDefaultConfig()
	cfg.DefaultInstance = f.Name
	cfg.Instances = []config.InstanceConfig{{Name: f.Name, Endpoint: f.Endpoint}}

	if err := cfg.Validate(path); err != nil {
		return err
	}
	if err := config.SaveConfig(path, cfg); err != nil {
		return err
	}

	if !flags.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", text.FgGreen.Sprint("Wrote"), path)
	}
	return nil
}
