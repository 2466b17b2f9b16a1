package models

// CacheEntry is one persisted geocoding outcome, keyed by the normalized
// address string. Entries are overwritten as a whole on re-resolution and
// never deleted by the pipeline.
type CacheEntry struct {
	Key       string      // Key is the normalized address key.
	Coords    Coordinates // Coords are the resolved coordinates.
	Exact     bool        // Exact is false for city-centroid-level approximations.
	UpdatedAt string      // UpdatedAt is the last write time, RFC 3339 text.
}
