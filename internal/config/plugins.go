package config

import "fmt"

// Capability is one of the closed set of extension points a plugin may
// register against (§9: "plugins become a registration interface over
// a closed capability set", replacing the original's dynamic loading).
type Capability string

const (
	CapabilityValueParser      Capability = "value-parser"
	CapabilityProjectGenerator Capability = "project-generator"
	CapabilityArchiveBackend   Capability = "archive-backend"
)

// Registry collects plugin registrations per capability. Bob ships a
// fixed set of built-in implementations; a "plugin" in config is just a
// name that must already be registered here, never a path to load code
// from.
type Registry struct {
	entries map[Capability]map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{entries: map[Capability]map[string]bool{}}
}

func (r *Registry) Register(cap Capability, name string) {
	if r.entries[cap] == nil {
		r.entries[cap] = map[string]bool{}
	}
	r.entries[cap][name] = true
}

func (r *Registry) Has(cap Capability, name string) bool {
	return r.entries[cap][name]
}

// ValidatePlugins checks that every name in cfg.Plugins is registered
// under some capability, rejecting unknown plugin names up front
// rather than failing later when a recipe tries to use one.
func (r *Registry) ValidatePlugins(cfg *Config) error {
	for _, name := range cfg.Plugins {
		found := false
		for cap := range r.entries {
			if r.Has(cap, name) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("plugin %q is not a registered capability", name)
		}
	}
	return nil
}
