package graph

import "errors"

var (
	// ErrUnknownDependency is reported when a recipe depends on a name
	// with no matching recipe or class.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrUnknownTool is reported when a step references a tool name not
	// present in its resolved tool set and the recipe's noUndefinedTools
	// policy is set.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnwhitelistedVariable is reported when a recipe field references
	// an environment variable outside of ${VAR} substitution that was
	// never whitelisted into scope.
	ErrUnwhitelistedVariable = errors.New("environment variable not whitelisted")

	// ErrSelfDependency is reported when a recipe lists itself as a
	// dependency, directly.
	ErrSelfDependency = errors.New("recipe depends on itself")
)
