package types

import "path/filepath"

// CacheKey addresses one extracted installation in the toolcache. A
// re-resolution that yields a different tag produces a different key
// and therefore a fresh entry; entries are never mutated in place.
type CacheKey struct {
	Owner    string
	Repo     string
	Tag      string
	Platform string
}

// RelPath returns the key's directory path relative to the cache root.
func (k CacheKey) RelPath() string {
	return filepath.Join(k.Owner, k.Repo, k.Tag, k.Platform)
}

// CacheEntry is one installation directory in the toolcache. Complete
// is true only when the completion marker was written after a fully
// successful extraction; readers must not trust incomplete entries.
type CacheEntry struct {
	Key      CacheKey
	Dir      string
	Complete bool
	Reused   bool
}
