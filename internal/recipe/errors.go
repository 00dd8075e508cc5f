package recipe

import "errors"

var (
	// ErrClassNotFound is reported when a recipe or class inherits from a
	// class name that has no matching classes/<name>.yaml file.
	ErrClassNotFound = errors.New("class not found")

	// ErrClassSelfCycle is reported when a class lists itself, directly,
	// among its own inherited classes.
	ErrClassSelfCycle = errors.New("class inherits from itself")

	// ErrClassMutualCycle is reported when two or more classes inherit
	// from each other transitively, discovered via DFS back-edge.
	ErrClassMutualCycle = errors.New("mutual class inheritance cycle")

	// ErrInvalidYAML is reported when a recipe or class file fails to
	// parse as YAML or has a field of the wrong shape.
	ErrInvalidYAML = errors.New("invalid recipe YAML")

	// ErrMultiPackageConflict is reported when a multiPackage entry
	// redeclares a field that multiPackage splitting does not allow to
	// vary (§4.1 "name is fixed by the map key").
	ErrMultiPackageConflict = errors.New("invalid multiPackage entry")
)
