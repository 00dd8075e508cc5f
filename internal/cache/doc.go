// Package cache implements the content-addressed artifact cache: the
// on-disk/remote layout keyed by Build-Id, the archive wire format, and
// the pluggable Backend abstraction (file, http, s3, azure) that
// composes multiple stores in priority order.
package cache
