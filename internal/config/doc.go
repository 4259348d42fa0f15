// Package config loads the jettower configuration file.
//
// The file names the host plugin instances the CLI may talk to and a few
// client settings. It lives at ~/.config/jettower/config.yaml unless
// JETTOWER_CONFIG or the --config flag points elsewhere:
//
//	defaultInstance: tower
//	httpTimeout: 30s
//	logLevel: info
//	instances:
//	  - name: tower
//	    endpoint: https://tower.example.com/graphql
//	  - name: staging
//	    endpoint: https://tower.staging.example.com/graphql
//
// A missing file is not an error: LoadConfig returns the defaults.
//
// ApplyToRegistry publishes the instances into a plugin.StaticRegistry.
// Watcher keeps a registry in sync with the file: when the file changes it is
// reloaded, validated and re-applied, so clients already bound to an
// instance pick up a moved GraphQL endpoint on their next call.
package config
