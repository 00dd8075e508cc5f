package scm

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/recipe"
)

// Transition is the decision the attic protocol reaches for a checkout
// workspace given its previously-applied and newly-declared state (§4.5).
type Transition int

const (
	NoOp Transition = iota
	InPlaceUpdate
	AtticMove
)

func (t Transition) String() string {
	switch t {
	case NoOp:
		return "no-op"
	case InPlaceUpdate:
		return "in-place-update"
	case AtticMove:
		return "attic-move"
	default:
		return "unknown"
	}
}

// DecideTransition implements §4.5's state-transition rules: identical
// state on a clean workspace is a no-op; a submodule policy change
// always forces an attic move regardless of anything else; otherwise an
// in-place update is attempted when the SCM kind and the nature of the
// change support it, falling back to an attic move.
func DecideTransition(old, new StateVector, workspaceDirty bool) Transition {
	if old.Digest() == new.Digest() && !workspaceDirty {
		return NoOp
	}
	if old.Submodule != new.Submodule {
		return AtticMove
	}
	if supportsInPlaceUpdate(old, new) {
		return InPlaceUpdate
	}
	return AtticMove
}

// supportsInPlaceUpdate reports whether moving from old to new can be
// achieved by updating the existing workspace rather than discarding it.
// Git supports branch/tag/commit changes and fast-forwarding URL changes
// as long as the remote identity (URL) is unchanged; the URL SCM
// supports digest-only changes at a fixed URL.
func supportsInPlaceUpdate(old, new StateVector) bool {
	if old.Kind != new.Kind {
		return false
	}
	switch old.Kind {
	case recipe.ScmGit:
		return old.URL == new.URL
	case recipe.ScmUrl:
		return old.URL == new.URL
	default:
		return false
	}
}

// MoveToAttic renames workspace into an entry tagged by its Variant-Id
// and a timestamp under its sibling "attic/" directory (§4.5's
// "attic/<timestamp>-<variant-id>_<name>"), so a discarded checkout's
// contents are preserved for inspection rather than deleted outright.
// It is a no-op if workspace does not exist.
func MoveToAttic(workspace string, variantID hash.Digest) error {
	if _, err := os.Stat(workspace); os.IsNotExist(err) {
		return nil
	}

	parent := filepath.Dir(workspace)
	attic := filepath.Join(parent, "attic")
	if err := os.MkdirAll(attic, 0o755); err != nil {
		return fmt.Errorf("creating attic directory: %w", err)
	}

	dest := filepath.Join(attic, fmt.Sprintf("%d-%s_%s", time.Now().UnixNano(), variantID.String(), filepath.Base(workspace)))
	if err := os.Rename(workspace, dest); err != nil {
		return fmt.Errorf("moving %s to attic: %w", workspace, err)
	}
	return nil
}
