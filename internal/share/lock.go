package share

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// acquireInstallLock takes an exclusive, per-descriptor file lock so
// two Bob invocations racing to install the same Build-Id never
// interleave their writes to the same workspace directory.
func acquireInstallLock(installDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(installDir, ".lock"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring install lock for %s: %w", installDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("timed out acquiring install lock for %s", installDir)
	}
	return lock, nil
}
