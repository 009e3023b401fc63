package ports

import "extractor-installer/internal/types"

// ManifestPort reads extractor and pack manifests out of an installed
// cache entry.
type ManifestPort interface {
	// ReadExtractorManifest locates and parses the extractor manifest
	// inside the entry, returning the directory that contains it.
	ReadExtractorManifest(entry types.CacheEntry) (types.ExtractorManifest, string, error)
	// HasPackManifest reports whether the entry carries a pack
	// manifest. Packs have relaxed requirements; absence is not fatal.
	HasPackManifest(entry types.CacheEntry) bool
}
