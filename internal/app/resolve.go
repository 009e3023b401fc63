package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"extractor-installer/internal/core"
)

// Resolve answers "which tag and asset would install" for each
// reference without downloading, verifying, or extracting anything.
// Per-reference failures are reported in place so one bad reference
// does not hide the others.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if len(req.References) == 0 {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no references to resolve")
	}

	result := ResolveResult{Items: make([]ResolvedItem, len(req.References))}
	for i, reference := range req.References {
		result.Items[i] = s.resolveOne(ctx, reference)
	}
	return result, nil
}

func (s Service) resolveOne(ctx context.Context, reference string) ResolvedItem {
	item := ResolvedItem{Reference: reference}
	ref, err := core.ParseReference(reference)
	if err != nil {
		item.Err = err
		return item
	}
	release, err := s.fetchRelease(ctx, ref)
	if err != nil {
		item.Err = err
		return item
	}
	resolved, err := s.Selector.Select(ref, release)
	if err != nil {
		item.Err = err
		return item
	}
	item.Tag = resolved.Tag
	item.Asset = resolved.Chosen.Name
	item.Size = resolved.Chosen.Size
	log.Ctx(ctx).Debug().
		Str("reference", reference).
		Str("tag", item.Tag).
		Str("asset", item.Asset).
		Msg("reference resolved")
	return item
}
