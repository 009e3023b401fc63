package ports

import (
	"context"
	"io"

	"extractor-installer/internal/types"
)

// ToolcachePort manages the persistent, key-addressed directory tree of
// extracted installations.
type ToolcachePort interface {
	// Lookup returns the entry for the key if a completed extraction
	// already exists on disk.
	Lookup(key types.CacheKey) (types.CacheEntry, bool)
	// InstallOrReuse extracts the archive into the key's directory
	// exactly once, or reuses a completed prior extraction. open is
	// invoked lazily so a cache hit never touches the network.
	InstallOrReuse(ctx context.Context, key types.CacheKey, format types.ArchiveFormat, open func(context.Context) (io.ReadCloser, error)) (types.CacheEntry, error)
	// Entries lists completed cache entries.
	Entries() ([]types.CacheEntry, error)
	// Prune removes entries; incompleteOnly limits removal to
	// interrupted extractions that lack a completion marker.
	Prune(incompleteOnly bool) (int, error)
}
