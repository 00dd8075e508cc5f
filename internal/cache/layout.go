package cache

import (
	"fmt"

	"github.com/bobbuildtool/bob/internal/hash"
)

// ArchiveVersion is the wire format version recorded in the archive's
// pax header (§6 "bob-archive-vsn=1").
const ArchiveVersion = 1

// Key returns the content-addressed relative path for a Build-Id, per
// §4.6: "<h[0:2]>/<h[2:4]>/<h[4:]>-<artifact-version>.tgz".
func Key(buildID hash.Digest) string {
	h := buildID.String()
	return fmt.Sprintf("%s/%s/%s-%d.tgz", h[0:2], h[2:4], h[4:], ArchiveVersion)
}
