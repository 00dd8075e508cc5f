package graph

import "github.com/bmatcuk/doublestar/v4"

// matchesAny reports whether name matches any of the given doublestar
// glob patterns, implementing the rootFilter config key (§6) and the
// package-name glob arguments of the CLI commands.
func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
