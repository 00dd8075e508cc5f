// Package cli parses flags and dispatches to bob's subcommands.
//
// Global flags:
//
//	-q, --quiet       Suppress informational output.
//	-v, --verbose     Enable verbose output.
//	-d, --debug       Enable debug output.
//	-C, --directory   Project root (default ".").
//	--build-root      Build tree root (default: project root).
//	-c, --config      Additional config file, may repeat; later wins.
//	-D, --define      VAR=VALUE config override, may repeat.
//
// Every subcommand builds its own engine.Engine from these flags and
// calls into the core packages to do its work; the CLI layer itself
// only parses arguments and formats output.
package cli
