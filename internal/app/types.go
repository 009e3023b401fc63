package app

import "extractor-installer/internal/types"

// ItemSpec is one raw install request before parsing. Reference parse
// failures are reported per item, not as a whole-run error.
type ItemSpec struct {
	Reference string
	Kind      types.ItemKind
	Languages []string
}

type InstallAllRequest struct {
	Items []ItemSpec
}

type InstallAllResult struct {
	Summary types.InstallSummary
}

type ResolveRequest struct {
	References []string
}

type ResolvedItem struct {
	Reference string
	Tag       string
	Asset     string
	Size      int64
	Err       error
}

type ResolveResult struct {
	Items []ResolvedItem
}

type CacheListResult struct {
	Entries []types.CacheEntry
}

type CachePruneRequest struct {
	IncompleteOnly bool
}

type CachePruneResult struct {
	Removed int
}
