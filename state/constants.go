package state

import "time"

var (
	// per-hop reliability multipliers used to rank candidate paths
	NearLinkReliability = 0.9
	DeepLinkReliability = 0.7

	DefaultMaxRetriesPerLink     = 3
	DefaultMaxAlternatePaths     = 3
	DefaultBufferCapacityPerNode = 16

	// DefaultMaxSearchDepth bounds simple-path enumeration (hops per path).
	DefaultMaxSearchDepth = 8
	// MaxEnumeratedPaths caps the enumeration itself on dense graphs.
	MaxEnumeratedPaths = 1024

	PathCacheTTL = time.Minute * 5

	// "M km" distance strings are scaled by this factor
	DeepSpaceKmScale = 1_000_000.0
)
