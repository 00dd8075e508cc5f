// Package scm implements the per-SCM state digest, the inline-update vs
// attic-move decision, and the concrete SCM checkout backends (git, svn,
// cvs, url, import) a checkout step's declarations compile into.
package scm
