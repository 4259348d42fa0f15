package config

import (
	"fmt"
	"net/url"

	"jettower/pkg/logging"
)

// Validate checks the configuration loaded from path and returns a
// ConfigurationErrorCollection listing every problem found.
func (c Config) Validate(path string) error {
	var errs ConfigurationErrorCollection

	add := func(field, message string, suggestions ...string) {
		configErr := NewConfigurationError(path, "validation", message)
		configErr.Field = field
		configErr.Suggestions = suggestions
		errs.Add(configErr)
	}

	if c.HTTPTimeout < 0 {
		add("httpTimeout", "must not be negative")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("logLevel", err.Error(), "use one of debug, info, warn, error")
	}

	seen := make(map[string]bool, len(c.Instances))
	for i, inst := range c.Instances {
		field := fmt.Sprintf("instances[%d]", i)

		if inst.Name == "" {
			add(field+".name", "is required")
		} else if seen[inst.Name] {
			add(field+".name", fmt.Sprintf("duplicate instance name %q", inst.Name))
		}
		seen[inst.Name] = true

		if err := validateEndpoint(inst.Endpoint); err != nil {
			add(field+".endpoint", err.Error(), "use an absolute URL such as https://tower.example.com/graphql")
		}
	}

	if c.DefaultInstance != "" && !seen[c.DefaultInstance] {
		add("defaultInstance", fmt.Sprintf("instance %q is not defined", c.DefaultInstance))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("is required")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
