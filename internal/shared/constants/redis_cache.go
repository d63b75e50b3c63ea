package constants

import "time"

// Redis key and TTL conventions for the parkwise service.
// Pattern: parkwise:{module}:{operation}:{identifier}

const CachePrefix = "parkwise"

// Lot snapshot (read-side view of the whole facility)
const (
	CacheKeyLotSnapshot = CachePrefix + ":lot:snapshot"
)

// Driver directory lookups
const (
	CacheKeyDriverByPlate = CachePrefix + ":drivers:plate:" // + license plate
)

// Invalidation patterns
const (
	PatternInvalidateDrivers = CachePrefix + ":drivers:*"
)

// Directory entries are near-static; the snapshot is rewritten after every
// event so it carries no expiry by default.
const (
	TTLDriverDirectory = 6 * time.Hour
)

func BuildDriverKey(plate string) string {
	return CacheKeyDriverByPlate + plate
}
