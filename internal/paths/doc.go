// Package paths names the on-disk layout of a Bob build tree: the
// release/develop workspace trees, their sibling attics, the build-index
// files, and the platform-appropriate default location of the system
// configuration file, following §3/§6's filesystem layout.
package paths
