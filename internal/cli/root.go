package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/bobbuildtool/bob/internal/bobinfo"
	"github.com/bobbuildtool/bob/internal/xerr"
)

// RootCmd is bob's single command tree: one field per subcommand, global
// flags shared by all of them.
var RootCmd struct {
	Quiet   bool `short:"q" help:"Suppress informational output."`
	Verbose bool `short:"v" help:"Enable verbose output."`
	Debug   bool `short:"d" help:"Enable debug output."`

	Directory string   `short:"C" help:"Project root." default:"." placeholder:"DIR"`
	BuildRoot string   `help:"Build tree root (default: project root)." placeholder:"DIR"`
	Config    []string `short:"c" help:"Additional config file, may repeat; later files win." placeholder:"PATH"`
	Define    []string `short:"D" help:"VAR=VALUE config override, may repeat." placeholder:"VAR=VALUE"`

	HelperPath        string `help:"namespace-sandbox helper binary." default:"bob-namespace-helper" placeholder:"PATH"`
	ContainerdAddress string `help:"containerd socket address, enables dev-sandbox/strict-sandbox." placeholder:"ADDR"`
	ContainerdNS      string `help:"containerd namespace." default:"bob"`

	Build       BuildCmd       `cmd:"" help:"Build recipes in release mode."`
	Dev         DevCmd         `cmd:"" help:"Build recipes in develop mode."`
	Clean       CleanCmd       `cmd:"" help:"Remove build workspaces and/or shared/cached artifacts."`
	Ls          LsCmd          `cmd:"" help:"List expanded packages."`
	LsRecipes   LsRecipesCmd   `cmd:"ls-recipes" help:"List recipes known to the project."`
	Status      StatusCmd      `cmd:"" help:"Show per-step build status."`
	Show        ShowCmd        `cmd:"" help:"Show a package's resolved identity."`
	QueryPath   QueryPathCmd   `cmd:"query-path" help:"Print a package's workspace paths."`
	QueryMeta   QueryMetaCmd   `cmd:"query-meta" help:"Print a recipe's metaEnv tags."`
	QueryRecipe QueryRecipeCmd `cmd:"query-recipe" help:"Print a resolved recipe."`
	QueryScm    QueryScmCmd    `cmd:"query-scm" help:"Print a package's SCM declarations."`
	Graph       GraphCmd       `cmd:"" help:"Print the dependency graph."`
	Archive     ArchiveCmd     `cmd:"" help:"Inspect or reclaim artifact cache backends."`
	Layers      LayersCmd      `cmd:"" help:"Manage externally sourced recipe layers."`
	Project     ProjectCmd     `cmd:"" help:"Print project information."`
	Init        InitCmd        `cmd:"" help:"Initialize a project/build-tree pair."`
	Version     VersionCmd     `cmd:"" help:"Show version information."`
}

// Execute parses arguments, configures logging, and runs the selected
// subcommand.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(bobinfo.Name),
		kong.Description("Recipe-driven build automation for reproducible embedded/systems builds."),
		kong.UsageOnError(),
		kong.Vars{
			"version": bobinfo.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// configureLogger reconfigures the global logger's level and formatter
// based on the parsed CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*xerr.Handler)
	if !ok {
		return
	}

	debug := RootCmd.Debug || bobinfo.IsDebug()
	quiet := RootCmd.Quiet || bobinfo.IsQuiet()
	verbose := RootCmd.Verbose || bobinfo.IsVerbose()

	formatter := xerr.NewPrettyFormatter(isatty(os.Stderr))
	formatter.SetVerbose(verbose)

	switch {
	case debug:
		handler.SetLevel(slog.LevelDebug)
	case quiet:
		handler.SetLevel(slog.LevelWarn)
	default:
		handler.SetLevel(slog.LevelInfo)
	}

	handler.SetFormatter(formatter)
	handler.SetStream(os.Stderr)
	handler.Flush()
}

func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
