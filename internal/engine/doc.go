// Package engine ties recipe loading, package expansion, identity,
// source control, the artifact cache, the shared-package store, sandbox
// execution, and the scheduler into one per-invocation build pipeline.
//
// An Engine owns every cache that must not leak across invocations (the
// live Variant-Id → Build-Id prediction cache, the build-index, the
// step-state index) so that two concurrent `bob` invocations against
// different build trees never share mutable state beyond what the
// filesystem-level locks already arbitrate (§9 "Global mutable state").
package engine
