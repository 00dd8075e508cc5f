package bobenv

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUndefinedVariable is reported when a ${VAR} substitution or a raw
// variable reference names a variable that isn't defined and whitelisted.
var ErrUndefinedVariable = errors.New("undefined environment variable")

var substPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Substitute replaces every ${VAR} occurrence in s with its value in e.
// An undefined variable referenced via ${VAR} is a fatal parse/expansion
// error per §4.2 ("environment variable used but not whitelisted").
//
// Substitution via ${VAR} is exempt from the whitelist check itself (§4.2
// draws the line at "outside ${VAR} substitutions"); the caller is
// responsible for whitelist enforcement on raw variable references found
// elsewhere in recipe fields.
func Substitute(s string, e Environment) (string, error) {
	var firstErr error
	result := substPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := substPattern.FindStringSubmatch(match)[1]
		v, ok := e.Get(name)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %q", ErrUndefinedVariable, name)
			}
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// ReferencedVariables returns the set of variable names referenced via
// ${VAR} in s, used to validate substitutions against a whitelist before
// execution.
func ReferencedVariables(s string) []string {
	matches := substPattern.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
