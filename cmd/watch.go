package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jettower/internal/config"
	"jettower/pkg/logging"
	"jettower/pkg/tower"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow configuration changes and re-resolve the OAuth API",
		Long: `Watches the configuration file and keeps the plugin registry in sync with
it until interrupted. Endpoint changes are logged, and when an instance is
selected its OAuth API endpoint is discovered again after every change.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	// The selected instance is optional here; without one only the registry
	// is kept in sync.
	var client *tower.Client
	if s.config.ResolveInstanceName(flags.Instance) != "" {
		client, err = s.newClient()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if client != nil {
		logAuthorizeURL(ctx, client)
	}

	watcher := config.NewWatcher(config.WatcherConfig{
		Path:     s.configPath,
		Registry: s.registry,
		Initial:  s.config,
		OnReload: func(next config.Config) {
			logEndpointChanges(s.config, next)
			s.config = next
			if client != nil {
				client.Reset()
				logAuthorizeURL(ctx, client)
			}
		},
	})
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}

func logAuthorizeURL(ctx context.Context, client *tower.Client) {
	u, err := client.AuthorizeURL(ctx)
	if err != nil {
		logging.Error("Watch", err, "Failed to resolve OAuth API of %s", client.InstanceName())
		return
	}
	logging.Info("Watch", "Instance %s authorizes at %s", client.InstanceName(), u)
}

// logEndpointChanges logs added, removed and re-pointed instances.
func logEndpointChanges(previous, next config.Config) {
	for _, inst := range next.Instances {
		old, ok := previous.Instance(inst.Name)
		switch {
		case !ok:
			logging.Info("Watch", "Instance %s added at %s", inst.Name, inst.Endpoint)
		case old.Endpoint != inst.Endpoint:
			logging.Info("Watch", "Instance %s moved from %s to %s", inst.Name, old.Endpoint, inst.Endpoint)
		}
	}
	for _, inst := range previous.Instances {
		if _, ok := next.Instance(inst.Name); !ok {
			logging.Info("Watch", "Instance %s removed", inst.Name)
		}
	}
}
