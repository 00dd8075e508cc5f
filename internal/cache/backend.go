package cache

import (
	"context"
	"io"
)

// Flags gate which traffic a backend participates in (§4.6:
// "src-download|src-upload|download|upload").
type Flags struct {
	Download    bool
	Upload      bool
	SrcDownload bool
	SrcUpload   bool
}

// Backend is one configured archive store. Multiple backends compose in
// priority order; the caller (the cache Client) is responsible for
// trying each in turn and respecting Flags.
type Backend interface {
	Name() string
	// Lookup reports whether key exists without downloading it.
	Lookup(ctx context.Context, key string) (bool, error)
	// Download streams key's content to w.
	Download(ctx context.Context, key string, w io.Writer) error
	// Upload streams r's content to key.
	Upload(ctx context.Context, key string, r io.Reader, size int64) error
	// Scan lists every key currently stored.
	Scan(ctx context.Context) ([]string, error)
	// Clean removes the given keys.
	Clean(ctx context.Context, keys []string) error
}
