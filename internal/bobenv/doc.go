// Package bobenv implements the environment model: immutable mappings of
// named strings with scope-propagation rules, ${VAR} substitution, and the
// small expression language used to evaluate "if:" conditions attached to
// dependencies, SCMs, and overrides.
//
// An Environment is copy-on-write: every mutating operation returns a new
// value and leaves the receiver untouched, so a parent's environment can be
// safely shared across many children during expansion.
package bobenv
