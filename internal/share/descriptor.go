package share

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobbuildtool/bob/internal/hash"
)

// descriptorName is the file each install directory carries alongside
// its "workspace" subdirectory.
const descriptorName = "pkg.json"

// Descriptor is the on-disk record of one installed package: its
// Build-Id, the on-disk size of its workspace, and when it was
// installed (the basis for LRU reclamation).
type Descriptor struct {
	BuildID     string    `json:"hash"`
	Size        int64     `json:"size"`
	InstalledAt time.Time `json:"installedAt"`
}

// InstallPath returns "<root>/<h[0:2]>/<h[2:4]>/<h[4:]>-<generation>".
// The generation suffix disambiguates installs that collide on their
// two-level hash prefix split but differ (which never happens for a
// single Build-Id, only when a stale install from an older archive
// format needs to coexist during a migration).
func InstallPath(root string, buildID hash.Digest, generation int) string {
	h := buildID.String()
	return filepath.Join(root, h[0:2], h[2:4], fmt.Sprintf("%s-%d", h[4:], generation))
}

func writeDescriptor(installDir string, d Descriptor) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(installDir, descriptorName), data, 0o644)
}

func readDescriptor(installDir string) (Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(installDir, descriptorName))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if d.BuildID == "" {
		return Descriptor{}, fmt.Errorf("%w: missing hash field", ErrInvalidDescriptor)
	}
	return d, nil
}
