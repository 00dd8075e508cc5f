// Package identity computes the two identity hashes that drive Bob's
// build reuse decisions: Variant-Id ("how is this step built") and
// Build-Id ("what would this step produce"), both 32-byte digests over
// internal/hash's canonical tree encoding.
//
// Variant-Id is a pure function of a step's declared shape: its script,
// its tool and sandbox inputs, its environment values, and the
// Variant-Ids of its own inputs. Build-Id additionally folds in the
// settled state of the world a step actually consumes: SCM digests for
// checkout steps, recursively-combined Build-Ids for build/package
// steps, and a fingerprint script's output when the step declares one.
package identity
