package identity

import (
	"sync"

	"github.com/bobbuildtool/bob/internal/hash"
)

// Cache is the "live build id" prediction cache: a map from a step's
// Variant-Id to its predicted Build-Id, scoped to one Engine instance.
// It deliberately holds no package-level state — each build invocation
// owns its own Cache so concurrent or sequential Engine instances never
// leak predictions between each other.
type Cache struct {
	mu    sync.Mutex
	preds map[hash.Digest]hash.Digest
}

// NewCache returns an empty prediction cache.
func NewCache() *Cache {
	return &Cache{preds: make(map[hash.Digest]hash.Digest)}
}

// Predict returns the previously-stored Build-Id prediction for variant,
// if any.
func (c *Cache) Predict(variant hash.Digest) (hash.Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.preds[variant]
	return id, ok
}

// Store records the predicted Build-Id for variant, overwriting any
// prior prediction (used when a step's actual settled state disagrees
// with what was predicted, per §4.4's indeterministic-checkout rule).
func (c *Cache) Store(variant, build hash.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preds[variant] = build
}

// Forget drops the prediction stored for variant, if any.
func (c *Cache) Forget(variant hash.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.preds, variant)
}
