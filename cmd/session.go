package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"jettower/internal/config"
	"jettower/pkg/logging"
	"jettower/pkg/plugin"
	"jettower/pkg/tower"
)

// session is the state shared by commands that talk to a plugin instance.
type session struct {
	configPath string
	config     config.Config
	registry   *plugin.StaticRegistry
}

// loadSession reads the configuration, initializes logging and fills an
// in-process plugin registry with the configured instances.
func loadSession(cmd *cobra.Command) (*session, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	if flags.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	return &session{
		configPath: path,
		config:     cfg,
		registry:   cfg.NewRegistry(),
	}, nil
}

// configPath returns --config or the default configuration path.
func configPath() (string, error) {
	if flags.ConfigPath != "" {
		return flags.ConfigPath, nil
	}
	return config.DefaultConfigPath()
}

// instanceName returns the instance selected by --instance or the
// configuration defaults.
func (s *session) instanceName() (string, error) {
	name := s.config.ResolveInstanceName(flags.Instance)
	if name == "" {
		configErr := config.NewConfigurationError(s.configPath, "validation", "no plugin instance selected")
		configErr.Field = "defaultInstance"
		configErr.Suggestions = []string{
			"pass --instance <name>",
			"set defaultInstance in the configuration file",
		}
		return "", configErr
	}
	return name, nil
}

// newClient builds a Tower client for the selected instance.
func (s *session) newClient() (*tower.Client, error) {
	name, err := s.instanceName()
	if err != nil {
		return nil, err
	}

	timeout := s.config.HTTPTimeout
	if timeout <= 0 {
		timeout = tower.DefaultHTTPTimeout
	}

	return tower.New(s.registry, tower.Options{InstanceName: name},
		tower.WithHTTPClient(&http.Client{Timeout: timeout}),
		tower.WithLogger(logging.Logger("Tower")),
		tower.WithUserAgent("jettower/"+GetVersion()),
	)
}

// newSessionClient is the common prelude of the upstream commands.
func newSessionClient(cmd *cobra.Command) (*tower.Client, error) {
	s, err := loadSession(cmd)
	if err != nil {
		return nil, err
	}
	return s.newClient()
}

// withSpinner runs fn while showing a spinner on stderr. The spinner is
// skipped in quiet mode and for machine-readable output.
func withSpinner(cmd *cobra.Command, message string, fn func() error) error {
	if flags.Quiet || flags.Template != "" || outputFormat(flags.OutputFormat) != outputTable {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	if err := fn(); err != nil {
		s.FinalMSG = text.FgRed.Sprint(fmt.Sprintf("Failed: %s", message)) + "\n"
		return err
	}
	return nil
}
