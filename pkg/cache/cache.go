// Package cache provides pluggable byte caches for expensive plot
// computations. Linkage results and rendered artifacts are cached keyed by a
// hash of their inputs, so repeated pipeline runs over the same data skip the
// clustering and render stages.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// found; expired entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LinkageKey builds the cache key for a linkage computation from the matrix
// content hash and the clustering parameters.
func LinkageKey(matrixHash, axis, metric, method string) string {
	return hashKey("linkage", matrixHash, axis, metric, method)
}

// ArtifactKey builds the cache key for a rendered artifact from the plot
// content hash and the output format.
func ArtifactKey(plotHash, format string) string {
	return hashKey("artifact", plotHash, format)
}
