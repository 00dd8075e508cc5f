// Package scheduler runs a step graph to completion: a bounded worker
// pool executes ready steps in parallel, persists per-step status for
// --resume, poisons only a failed step's downstream under --keep-going,
// and optionally operates a GNU-make-compatible job-server.
package scheduler
