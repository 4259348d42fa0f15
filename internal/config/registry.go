package config

import "jettower/pkg/plugin"

// ApplyToRegistry registers every configured instance in reg and removes
// instances that were registered from a previous configuration but are gone
// now. previous may be nil.
func (c Config) ApplyToRegistry(reg *plugin.StaticRegistry, previous *Config) {
	current := make(map[string]bool, len(c.Instances))
	for _, inst := range c.Instances {
		current[inst.Name] = true
		reg.Register(inst.Name, inst.Endpoint)
	}

	if previous == nil {
		return
	}
	for _, inst := range previous.Instances {
		if !current[inst.Name] {
			reg.Unregister(inst.Name)
		}
	}
}

// NewRegistry returns a StaticRegistry holding the configured instances.
func (c Config) NewRegistry() *plugin.StaticRegistry {
	reg := plugin.NewStaticRegistry()
	c.ApplyToRegistry(reg, nil)
	return reg
}
