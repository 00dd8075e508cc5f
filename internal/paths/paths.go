package paths

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"

	"github.com/bobbuildtool/bob/internal/identity"
)

const (

	// Name used for directory and file naming.
	toolName = "bob"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Mode selects between the release and develop build-tree layouts
// (§3: "work/... (release), dev/... (develop)").
type Mode string

const (
	Release Mode = "release"
	Develop Mode = "develop"
)

// Stage names one of a package's three possible workspace kinds.
type Stage string

const (
	StageSrc   Stage = "src"
	StageBuild Stage = "build"
	StageDist  Stage = "dist"
)

// StageOf maps a step kind onto its workspace stage name.
func StageOf(kind identity.StepKind) Stage {
	switch kind {
	case identity.Checkout:
		return StageSrc
	case identity.Build:
		return StageBuild
	default:
		return StageDist
	}
}

// Layout names every path under one build tree. A build tree may live
// outside the project root, per "bob init <project> <buildtree>".
type Layout struct {
	Root string
	Mode Mode
}

// NewLayout creates a Layout rooted at root in the given mode.
func NewLayout(root string, mode Mode) *Layout {
	return &Layout{Root: root, Mode: mode}
}

// treeRoot returns "work" or "dev" under Root, per the build mode.
func (l *Layout) treeRoot() string {
	if l.Mode == Develop {
		return filepath.Join(l.Root, "dev")
	}
	return filepath.Join(l.Root, "work")
}

// packageDir returns the directory holding every generation of one
// package's workspace for the given stage, with the package-path and
// stage components ordered to match the release/develop layouts:
// "work/<package-path>/<stage>" (release), "dev/<stage>/<package-path>"
// (develop).
func (l *Layout) packageDir(packagePath string, stage Stage) string {
	if l.Mode == Develop {
		return filepath.Join(l.treeRoot(), string(stage), packagePath)
	}
	return filepath.Join(l.treeRoot(), packagePath, string(stage))
}

// Workspace returns the workspace directory for one package's stage at
// the given generation number.
func (l *Layout) Workspace(packagePath string, stage Stage, generation int) string {
	return filepath.Join(l.packageDir(packagePath, stage), strconv.Itoa(generation), "workspace")
}

// Attic returns the sibling attic directory for one package's stage,
// into which abandoned workspaces are moved (§4.5).
func (l *Layout) Attic(packagePath string, stage Stage) string {
	return filepath.Join(l.packageDir(packagePath, stage), "attic")
}

// StateIndexPath is the per-step execution state index used for
// --resume (§4.4, §5).
func (l *Layout) StateIndexPath() string {
	return filepath.Join(l.Root, ".bob-state.json")
}

// BuildIndexPath is the Variant-Id → workspace / prediction-cache index
// (§3 "Filesystem layout").
func (l *Layout) BuildIndexPath() string {
	return filepath.Join(l.Root, ".bob-index.json")
}

// SystemDefaultConfig is the platform-appropriate location of the
// system-wide default configuration file (§6's configuration union).
//
//	Linux:   $XDG_CONFIG_HOME/bob/default.yaml
//	macOS:   ~/Library/Application Support/bob/default.yaml
func SystemDefaultConfig() string {
	return filepath.Join(xdg.ConfigHome, toolName, "default.yaml")
}
