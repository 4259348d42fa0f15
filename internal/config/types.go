package config

import "time"

// Config is the top-level jettower configuration.
type Config struct {
	// DefaultInstance is used when no instance is selected explicitly.
	DefaultInstance string `yaml:"defaultInstance,omitempty"`

	// HTTPTimeout bounds every upstream HTTP call.
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`

	Instances []InstanceConfig `yaml:"instances,omitempty"`
}

// InstanceConfig describes one host plugin instance.
type InstanceConfig struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

// Instance returns the named instance.
func (c Config) Instance(name string) (InstanceConfig, bool) {
	for _, inst := range c.Instances {
		if inst.Name == name {
			return inst, true
		}
	}
	return InstanceConfig{}, false
}

// ResolveInstanceName picks the instance to use: name when set, otherwise
// DefaultInstance, otherwise the only configured instance.
func (c Config) ResolveInstanceName(name string) string {
	if name != "" {
		return name
	}
	if c.DefaultInstance != "" {
		return c.DefaultInstance
	}
	if len(c.Instances) == 1 {
		return c.Instances[0].Name
	}
	return ""
}
