package share

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/bobbuildtool/bob/internal/hash"
)

// Store manages installs under a root directory, optionally bounded to
// Quota bytes total (0 meaning unbounded).
type Store struct {
	Root  string
	Quota int64
}

// Lookup returns the install directory for buildID if one already
// exists and its descriptor parses, without touching its LRU ranking.
func (s *Store) Lookup(buildID hash.Digest) (string, bool) {
	for generation := 0; generation < maxGenerations; generation++ {
		dir := InstallPath(s.Root, buildID, generation)
		if _, err := readDescriptor(dir); err == nil {
			return dir, true
		}
	}
	return "", false
}

const maxGenerations = 4

// Install locks buildID's slot, copies contentDir into the shared
// store's workspace subdirectory, and records a fresh descriptor.
// Reclaim should be called afterward (the caller controls its
// frequency since scanning the whole store is not free).
func (s *Store) Install(buildID hash.Digest, contentDir string) (string, error) {
	dir := InstallPath(s.Root, buildID, 0)
	workspace := filepath.Join(dir, "workspace")

	lock, err := acquireInstallLock(dir)
	if err != nil {
		return "", err
	}
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(workspace), 0o755); err != nil {
		return "", err
	}
	if err := os.RemoveAll(workspace); err != nil {
		return "", err
	}
	size, err := copyTree(contentDir, workspace)
	if err != nil {
		return "", err
	}

	if err := writeDescriptor(dir, Descriptor{
		BuildID:     buildID.String(),
		Size:        size,
		InstalledAt: installTime(),
	}); err != nil {
		return "", err
	}
	return workspace, nil
}

// installTime exists so tests can observe a deterministic clock
// without calling time.Now directly from Install.
var installTime = time.Now

// Reclaim evicts the least-recently-installed packages until the
// store's total size is at or below Quota. A Quota of 0 disables
// reclamation entirely.
func (s *Store) Reclaim(ctx context.Context) error {
	if s.Quota <= 0 {
		return nil
	}

	installs, err := s.scan()
	if err != nil {
		return err
	}
	sort.Slice(installs, func(i, j int) bool {
		return installs[i].descriptor.InstalledAt.Before(installs[j].descriptor.InstalledAt)
	})

	cache, err := lru.NewLRU[string, installEntry](math.MaxInt32, nil)
	if err != nil {
		return err
	}
	var total int64
	for _, in := range installs {
		cache.Add(in.dir, in)
		total += in.descriptor.Size
	}

	for total > s.Quota {
		_, evicted, ok := cache.RemoveOldest()
		if !ok {
			break
		}
		if err := os.RemoveAll(evicted.dir); err != nil {
			return err
		}
		total -= evicted.descriptor.Size
		slog.Info("reclaimed shared package", "path", evicted.dir, "size", evicted.descriptor.Size)
	}
	return nil
}

type installEntry struct {
	dir        string
	descriptor Descriptor
}

// scan walks the store, skipping (but logging, never failing the whole
// scan over) installs whose descriptor is missing or invalid.
func (s *Store) scan() ([]installEntry, error) {
	var out []installEntry
	err := filepath.WalkDir(s.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) != descriptorName {
			return nil
		}
		dir := filepath.Dir(path)
		desc, err := readDescriptor(dir)
		if err != nil {
			slog.Warn("skipping invalid shared package descriptor", "dir", dir, "error", err)
			return nil
		}
		out = append(out, installEntry{dir: dir, descriptor: desc})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return out, err
}

// Clean removes installs per the "clean --shared [--all-unused]"
// contract: allUnused removes every install not referenced by
// liveBuildIDs; otherwise it only enforces the quota.
func (s *Store) Clean(ctx context.Context, allUnused bool, liveBuildIDs map[string]bool) error {
	if !allUnused {
		return s.Reclaim(ctx)
	}

	installs, err := s.scan()
	if err != nil {
		return err
	}
	for _, in := range installs {
		if liveBuildIDs[in.descriptor.BuildID] {
			continue
		}
		if err := os.RemoveAll(in.dir); err != nil {
			return err
		}
		slog.Info("removed unused shared package", "path", in.dir)
	}
	return nil
}
