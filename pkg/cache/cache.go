// Package cache provides the read-through cache used for query results.
//
// Entries are grouped in families (one per entity type). Invalidating a
// family makes every entry of that family unreachable at once, which is what
// a mutation needs: it cannot know which query shapes it affected.
package cache

import (
	"context"
	"encoding/json"
	"errors"
)

// Cache defines the interface for caching services.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, family, key string) ([]byte, bool, error)
	Set(ctx context.Context, family, key string, value []byte) error
	// Invalidate drops every entry of the family.
	Invalidate(ctx context.Context, family string) error
}

// Observer is notified of lookups, e.g. to export hit ratios.
type Observer interface {
	Hit(family string)
	Miss(family string)
}

// ErrCorrupt is returned by GetJSON when a cached value cannot be decoded.
var ErrCorrupt = errors.New("cached value is corrupt")

// GetJSON reads and decodes a JSON value.
func GetJSON(ctx context.Context, c Cache, family, key string, dest interface{}) (bool, error) {
	raw, ok, err := c.Get(ctx, family, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Join(ErrCorrupt, err)
	}
	return true, nil
}

// SetJSON encodes and stores a JSON value.
func SetJSON(ctx context.Context, c Cache, family, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, family, key, raw)
}
