package cache

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores archives directly on the local filesystem, rooted
// at Dir.
type FileBackend struct {
	NameTag string
	Dir     string
}

func (f *FileBackend) Name() string { return f.NameTag }

func (f *FileBackend) Lookup(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(f.Dir, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (f *FileBackend) Download(ctx context.Context, key string, w io.Writer) error {
	src, err := os.Open(filepath.Join(f.Dir, key))
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}

func (f *FileBackend) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	path := filepath.Join(f.Dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileBackend) Scan(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(f.Dir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return keys, err
}

func (f *FileBackend) Clean(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := os.Remove(filepath.Join(f.Dir, k)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
