// Package config loads Bob's project configuration: a system-wide
// default, a project "default.yaml", zero or more "-c <file>"
// overrides, and "-D VAR=VALUE" assignments, merged left to right with
// "-D" winning over everything (§6).
package config
