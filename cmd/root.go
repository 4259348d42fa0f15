package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jettower/internal/config"
	"jettower/pkg/plugin"
	"jettower/pkg/tower"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates an invalid configuration or an unknown instance.
	ExitCodeConfigError = 2
	// ExitCodeUpstreamError indicates Tower answered with a non-2xx status.
	ExitCodeUpstreamError = 3
)

// rootFlags holds the values of the persistent flags shared by all commands.
type rootFlags struct {
	// ConfigPath overrides the configuration file (env: JETTOWER_CONFIG)
	ConfigPath string
	// Instance selects the plugin instance; defaults to defaultInstance
	Instance string
	// OutputFormat is one of table, json, yaml
	OutputFormat string
	// Template renders the result with a Go template instead
	Template string
	// Quiet suppresses progress indicators
	Quiet bool
	// Debug enables debug logging
	Debug bool
}

var flags rootFlags

// rootCmd represents the base command for the jettower application.
var rootCmd = &cobra.Command{
	Use:   "jettower",
	Short: "Discover and call the OAuth API of a Tower deployment",
	Long: `jettower talks to Tower deployments exposed through host plugin instances.
It discovers the OAuth API endpoint and client credentials over GraphQL and
uses them to build authorize URLs, read user profiles and introspect tokens.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "jettower version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(reportError(rootCmd.ErrOrStderr(), err))
	}
}

// reportError adds the detailed configuration report to what cobra already
// printed and returns the exit code for err.
func reportError(w io.Writer, err error) int {
	if report, ok := config.DetailedReport(err); ok {
		fmt.Fprintf(w, "\n%s\n", report)
	}
	return getExitCode(err)
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if config.IsConfigurationError(err) {
		return ExitCodeConfigError
	}

	var notFound *plugin.NotFoundError
	if errors.As(err, &notFound) {
		return ExitCodeConfigError
	}

	if tower.IsRequestError(err) {
		return ExitCodeUpstreamError
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Configuration file (default $JETTOWER_CONFIG or ~/.config/jettower/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.Instance, "instance", "i", "", "Plugin instance to use (default: defaultInstance from the configuration)")
	rootCmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(outputTable), "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.Template, "template", "", "Render output with a Go template (sprig functions available)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInstancesCmd())
	rootCmd.AddCommand(newAuthorizeURLCmd())
	rootCmd.AddCommand(newTokenURLCmd())
	rootCmd.AddCommand(newClientCmd())
	rootCmd.AddCommand(newUserInfoCmd())
	rootCmd.AddCommand(newIntrospectCmd())
	rootCmd.AddCommand(newWatchCmd())
}
