package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/bobbuildtool/bob/internal/hash"
)

// ConfiguredBackend pairs a Backend with the traffic flags its config
// entry granted it.
type ConfiguredBackend struct {
	Backend
	Flags Flags
}

// Client composes multiple backends in priority order, implementing
// §4.6's download/upload gating.
type Client struct {
	backends []ConfiguredBackend
}

// NewClient builds a Client over backends in priority order.
func NewClient(backends ...ConfiguredBackend) *Client {
	return &Client{backends: backends}
}

// WithFlags wraps b with traffic flags for use with NewClient.
func WithFlags(b Backend, f Flags) ConfiguredBackend {
	return ConfiguredBackend{Backend: b, Flags: f}
}

// Lookup checks backends in priority order, returning the first one
// that has buildID.
func (c *Client) Lookup(ctx context.Context, buildID hash.Digest) (Backend, bool, error) {
	key := Key(buildID)
	for _, b := range c.backends {
		if !b.Flags.Download {
			continue
		}
		ok, err := b.Lookup(ctx, key)
		if err != nil {
			continue
		}
		if ok {
			return b.Backend, true, nil
		}
	}
	return nil, false, nil
}

// Download streams the artifact for buildID from the first backend that
// has it, unpacking it into destDir.
func (c *Client) Download(ctx context.Context, buildID hash.Digest, destDir string) (AuditTrail, error) {
	backend, ok, err := c.Lookup(ctx, buildID)
	if err != nil {
		return AuditTrail{}, err
	}
	if !ok {
		return AuditTrail{}, ErrNotFound
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(backend.Download(ctx, Key(buildID), pw))
	}()
	return Unpack(pr, destDir)
}

// Scan returns the union of archive keys known to every
// backend that supports listing (§8 testable property 7: "archive scan
// is idempotent").
func (c *Client) Scan(ctx context.Context) ([]string, error) {
	backends := make([]Backend, 0, len(c.backends))
	for _, b := range c.backends {
		backends = append(backends, b.Backend)
	}
	seen := make(map[string]bool)
	var all []string
	for _, b := range backends {
		keys, err := b.Scan(ctx)
		if err != nil {
			continue
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				all = append(all, k)
			}
		}
	}
	return all, nil
}

// FetchMeta returns the audit trail stored under key, trying backends
// in priority order, without downloading or unpacking the artifact's
// content tree.
func (c *Client) FetchMeta(ctx context.Context, key string) (AuditTrail, error) {
	for _, b := range c.backends {
		ok, err := b.Lookup(ctx, key)
		if err != nil || !ok {
			continue
		}
		pr, pw := io.Pipe()
		go func(backend Backend) {
			pw.CloseWithError(backend.Download(ctx, key, pw))
		}(b.Backend)
		meta, err := UnpackMeta(pr)
		if err != nil {
			continue
		}
		return meta, nil
	}
	return AuditTrail{}, ErrNotFound
}

// CleanKeys removes keys from every configured backend that supports
// deletion.
func (c *Client) CleanKeys(ctx context.Context, keys []string) error {
	for _, b := range c.backends {
		if err := b.Clean(ctx, keys); err != nil {
			return fmt.Errorf("cleaning %s: %w", b.Name(), err)
		}
	}
	return nil
}

// Upload packs contentDir with meta and uploads it to every backend
// flagged for upload, refusing incomplete audit trails outright.
func (c *Client) Upload(ctx context.Context, buildID hash.Digest, meta AuditTrail, contentDir string) error {
	if !meta.Complete() {
		return ErrIncompleteAuditTrail
	}

	key := Key(buildID)
	for _, b := range c.backends {
		if !b.Flags.Upload {
			continue
		}
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(Pack(pw, meta, contentDir))
		}()
		if err := b.Upload(ctx, key, pr, -1); err != nil {
			return err
		}
	}
	return nil
}
