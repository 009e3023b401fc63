package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// CacheList enumerates completed toolcache entries.
func (s Service) CacheList(ctx context.Context) (CacheListResult, error) {
	entries, err := s.Toolcache.Entries()
	if err != nil {
		return CacheListResult{}, err
	}
	log.Ctx(ctx).Debug().Int("entries", len(entries)).Msg("toolcache scanned")
	return CacheListResult{Entries: entries}, nil
}

// CachePrune removes toolcache entries; with IncompleteOnly it removes
// only the remnants of interrupted extractions.
func (s Service) CachePrune(ctx context.Context, req CachePruneRequest) (CachePruneResult, error) {
	removed, err := s.Toolcache.Prune(req.IncompleteOnly)
	if err != nil {
		return CachePruneResult{}, err
	}
	log.Ctx(ctx).Info().Int("removed", removed).Bool("incomplete_only", req.IncompleteOnly).Msg("toolcache pruned")
	return CachePruneResult{Removed: removed}, nil
}
