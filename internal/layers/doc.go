// Package layers implements externally sourced recipe bundles: each
// configured layer is checked out through internal/scm (reusing the
// same state-vector/attic transition protocol recipes' own checkout
// steps use) into its own workspace, then its recipe directory is
// merged into the project's recipe search path with layer-local names
// taking the lowest precedence.
package layers
