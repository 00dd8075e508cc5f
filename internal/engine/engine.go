package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/bobinfo"
	"github.com/bobbuildtool/bob/internal/cache"
	"github.com/bobbuildtool/bob/internal/config"
	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/identity"
	"github.com/bobbuildtool/bob/internal/layers"
	"github.com/bobbuildtool/bob/internal/paths"
	"github.com/bobbuildtool/bob/internal/recipe"
	"github.com/bobbuildtool/bob/internal/sandbox"
	"github.com/bobbuildtool/bob/internal/scheduler"
	"github.com/bobbuildtool/bob/internal/share"
)

// Options configures a new Engine.
type Options struct {
	ProjectRoot string
	BuildRoot   string // defaults to ProjectRoot if empty
	Mode        paths.Mode

	ConfigOverrides []string // "-c <file>" paths, in order
	Defines         []string // "-D VAR=VALUE"
	UpdateLayers    bool     // re-sync layers before loading recipes

	HelperPath        string // namespace-sandbox helper binary
	ContainerdAddress string // empty disables dev-sandbox/strict-sandbox
	ContainerdNS      string
}

// Engine is the per-invocation build pipeline: one Engine is
// constructed per `bob` command and discarded afterward, so none of its
// in-memory caches leak across invocations.
type Engine struct {
	ProjectRoot string
	Config      *config.Config
	Layers      *layers.Manager
	Store       *recipe.Store
	Layout      *paths.Layout
	Cache       *cache.Client
	Share       *share.Store
	Sandbox     *sandbox.Dispatcher
	State       *scheduler.StateIndex
	Workspaces  *WorkspaceIndex
	Identity    *identity.Cache

	steps map[*graph.Step]stepInfo
	image io.Closer
}

// New resolves configuration, loads layers and recipes, and wires
// every cache/backend an Engine needs to run a build.
func New(ctx context.Context, opts Options) (*Engine, error) {
	buildRoot := opts.BuildRoot
	if buildRoot == "" {
		buildRoot = opts.ProjectRoot
	}

	systemDefault, err := loadOptional(paths.SystemDefaultConfig())
	if err != nil {
		return nil, err
	}
	projectDefault, err := loadOptional(filepath.Join(opts.ProjectRoot, "default.yaml"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(systemDefault, projectDefault, opts.ConfigOverrides, opts.Defines)
	if err != nil {
		return nil, err
	}
	if !bobinfo.MeetsMinimum(cfg.BobMinimumVersion) {
		return nil, fmt.Errorf("%w: requires %s, this build is %s", ErrMinimumVersion, cfg.BobMinimumVersion, bobinfo.Version())
	}

	mgr := &layers.Manager{Root: filepath.Join(buildRoot, "layers"), Layers: cfg.Layers}
	if opts.UpdateLayers {
		if err := mgr.Update(ctx); err != nil {
			return nil, err
		}
	}

	store, err := loadStore(opts.ProjectRoot, mgr)
	if err != nil {
		return nil, err
	}

	client, err := newCacheClient(cfg.Archive)
	if err != nil {
		return nil, err
	}

	var shareStore *share.Store
	if cfg.Share.Path != "" {
		shareStore = &share.Store{Root: cfg.Share.Path, Quota: cfg.Share.Quota}
	}

	mode := opts.Mode
	if mode == "" {
		mode = paths.Release
	}
	layout := paths.NewLayout(buildRoot, mode)

	state, err := scheduler.OpenStateIndex(layout.StateIndexPath())
	if err != nil {
		return nil, err
	}
	workspaces, err := OpenWorkspaceIndex(layout.BuildIndexPath())
	if err != nil {
		return nil, err
	}

	var imageExec sandbox.Executor
	var closer io.Closer
	if opts.ContainerdAddress != "" {
		rt, err := sandbox.NewImageRuntime(opts.ContainerdAddress, opts.ContainerdNS)
		if err != nil {
			return nil, err
		}
		imageExec = rt
		closer = rt
	}

	e := &Engine{
		ProjectRoot: opts.ProjectRoot,
		Config:      cfg,
		Layers:      mgr,
		Store:       store,
		Layout:      layout,
		Cache:       client,
		Share:       shareStore,
		Sandbox:     sandbox.NewDispatcher(opts.HelperPath, imageExec),
		State:       state,
		Workspaces:  workspaces,
		Identity:    identity.NewCache(),
		image:       closer,
	}
	return e, nil
}

// Close releases any long-lived resources the Engine opened (currently
// just the containerd client backing dev-sandbox/strict-sandbox).
func (e *Engine) Close() error {
	if e.image != nil {
		return e.image.Close()
	}
	return nil
}

func loadOptional(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return config.Load(path)
}
