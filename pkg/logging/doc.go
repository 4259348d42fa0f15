// Package logging is the structured logger shared by jettower packages.
//
// It wraps log/slog with a subsystem tag on every entry, so output from the
// plugin registry, the configuration watcher and the CLI stays easy to tell
// apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("ConfigWatcher", "Reloaded %s", path)
//	logging.Debug("PluginRegistry", "Registered plugin %s at %s", name, endpoint)
//	logging.Error("CLI", err, "Failed to introspect token")
//
// Code that takes a *slog.Logger, such as tower.WithLogger, gets one with
// Logger:
//
//	client, err := tower.New(reg, opts, tower.WithLogger(logging.Logger("Tower")))
//
// Before Init is called, entries go to slog.Default().
package logging
