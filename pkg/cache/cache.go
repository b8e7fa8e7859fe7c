// Package cache provides the artifact cache used by the render pipeline.
//
// Rendering is deterministic: the same document rendered against the same
// template always yields the same bytes. The pipeline therefore keys each
// artifact by a hash of the canonical document JSON, the output format and,
// for LaTeX, a hash of the template text, and reuses earlier output when
// nothing changed.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by preview servers
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// # Keys
//
// Keys come from a [Keyer]. [DefaultKeyer] produces "artifact:<sha256>"
// keys; [ScopedKeyer] prefixes them so several rulebooks can share one
// Redis database.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay in the cache.
const TTLArtifact = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as a miss (hit == false) with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of one rendered artifact of the document
	// whose canonical JSON hashes to docHash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the inputs besides the document that change a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format       string `json:"format"`
	TemplateHash string `json:"template,omitempty"`

	// Diagram options, set for dot and svg only.
	Depth     int  `json:"depth,omitempty"`
	Detailed  bool `json:"detailed,omitempty"`
	CrossRefs bool `json:"cross_refs,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
