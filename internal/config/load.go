package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Load reads one YAML document into a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &c, nil
}

// Resolve merges systemDefault, projectDefault, overrides (in order,
// via "-c <file>"), and defines (via "-D VAR=VALUE") into one Config,
// exactly in that precedence order (§6).
func Resolve(systemDefault, projectDefault *Config, overridePaths []string, defines []string) (*Config, error) {
	merged := &Config{}
	if systemDefault != nil {
		merged = merge(merged, systemDefault)
	}
	if projectDefault != nil {
		merged = merge(merged, projectDefault)
	}
	for _, path := range overridePaths {
		override, err := Load(path)
		if err != nil {
			return nil, err
		}
		merged = merge(merged, override)
	}
	for _, d := range defines {
		if err := applyDefine(merged, d); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// merge layers overlay on top of base: scalars and the archive and
// rootFilter lists take the overlay's value when it is non-empty; the
// whitelist, scmOverrides, plugins, layers and layersScmOverrides lists
// are appended to the base's; maps are combined with overlay entries
// winning on key conflict.
func merge(base, overlay *Config) *Config {
	out := *base

	if overlay.Environment != nil {
		out.Environment = mergeStringMap(out.Environment, overlay.Environment)
	}
	if len(overlay.Whitelist) > 0 {
		out.Whitelist = append(append([]string{}, out.Whitelist...), overlay.Whitelist...)
	}
	if len(overlay.Archive) > 0 {
		out.Archive = overlay.Archive
	}
	if overlay.Share != (Share{}) {
		out.Share = overlay.Share
	}
	if len(overlay.ScmOverrides) > 0 {
		out.ScmOverrides = append(append([]ScmOverrideRule{}, out.ScmOverrides...), overlay.ScmOverrides...)
	}
	if overlay.ScmDefaults != nil {
		out.ScmDefaults = mergeStringMap(out.ScmDefaults, overlay.ScmDefaults)
	}
	if len(overlay.RootFilter) > 0 {
		out.RootFilter = overlay.RootFilter
	}
	if overlay.Hooks != nil {
		out.Hooks = mergeStringMap(out.Hooks, overlay.Hooks)
	}
	if len(overlay.Plugins) > 0 {
		out.Plugins = append(append([]string{}, out.Plugins...), overlay.Plugins...)
	}
	if overlay.Policies != nil {
		merged := make(map[string]bool, len(out.Policies)+len(overlay.Policies))
		for k, v := range out.Policies {
			merged[k] = v
		}
		for k, v := range overlay.Policies {
			merged[k] = v
		}
		out.Policies = merged
	}
	if overlay.BobMinimumVersion != "" {
		out.BobMinimumVersion = overlay.BobMinimumVersion
	}
	if len(overlay.Layers) > 0 {
		out.Layers = append(append([]Layer{}, out.Layers...), overlay.Layers...)
	}
	if len(overlay.LayersScmOverrides) > 0 {
		out.LayersScmOverrides = append(append([]ScmOverrideRule{}, out.LayersScmOverrides...), overlay.LayersScmOverrides...)
	}
	if overlay.DefaultSandboxMode != "" {
		out.DefaultSandboxMode = overlay.DefaultSandboxMode
	}
	return &out
}

func mergeStringMap(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// applyDefine sets one "-D VAR=VALUE" assignment directly into the
// environment map, which always has the highest precedence.
func applyDefine(c *Config, define string) error {
	name, value, ok := strings.Cut(define, "=")
	if !ok || name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAssignment, define)
	}
	if c.Environment == nil {
		c.Environment = map[string]string{}
	}
	c.Environment[name] = value
	return nil
}
