// Package share implements the shared-package store: a content-addressed
// install tree, outside any single build's workspace, that lets
// identical packages built from different checkouts (or different
// developers' machines via a network mount) share one copy on disk
// instead of duplicating it per workspace. Installs are quota-bounded
// by least-recently-installed reclamation.
package share
