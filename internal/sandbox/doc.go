// Package sandbox executes a step's script under one of the five
// isolation policies: no-sandbox (direct exec, no isolation), sandbox
// and slim-sandbox (namespace isolation without a container image),
// dev-sandbox (container image, network and host paths permitted for
// interactive development), and strict-sandbox (container image, no
// network, no host paths). Modes that carry an image run it through a
// containerd-backed executor; modes without one run through a
// namespace-helper or direct-exec executor.
package sandbox
