package core

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"

	"extractor-installer/internal/types"
)

// AssetSelector chooses the single downloadable asset for a resolved
// release. Platform is an os-arch pair such as "linux-amd64"; it drives
// the default asset-name convention when the reference carries no
// explicit pattern.
type AssetSelector struct {
	Platform string
}

func NewAssetSelector(platform string) AssetSelector {
	return AssetSelector{Platform: platform}
}

// Select applies the reference's asset glob, or the default
// platform-derived convention, to the release's assets. Exactly one
// asset must remain: ambiguity is an error, never resolved by picking
// the first match.
func (s AssetSelector) Select(ref types.ExtractorReference, release types.Release) (types.ResolvedRelease, error) {
	resolved := types.ResolvedRelease{
		Ref:        ref,
		Tag:        release.TagName,
		Candidates: release.Assets,
	}

	var matches []types.Asset
	if ref.AssetPattern != "" {
		compiled, err := glob.Compile(ref.AssetPattern)
		if err != nil {
			return resolved, types.NewInstallError(
				types.FailureMalformedReference,
				fmt.Sprintf("asset pattern %q is not a valid glob", ref.AssetPattern), err)
		}
		for _, asset := range release.Assets {
			if compiled.Match(asset.Name) {
				matches = append(matches, asset)
			}
		}
	} else {
		matches = s.defaultMatches(release.Assets)
	}

	switch len(matches) {
	case 0:
		return resolved, types.NewInstallError(
			types.FailureAssetNotFound,
			fmt.Sprintf("no downloadable asset matches %s at %s", ref.Slug(), release.TagName), nil)
	case 1:
		resolved.Chosen = matches[0]
		log.Debug().
			Str("reference", ref.String()).
			Str("tag", release.TagName).
			Str("asset", resolved.Chosen.Name).
			Msg("asset selected")
		return resolved, nil
	default:
		names := make([]string, 0, len(matches))
		for _, asset := range matches {
			names = append(names, asset.Name)
		}
		return resolved, types.NewInstallError(
			types.FailureAssetAmbiguous,
			fmt.Sprintf("multiple assets match for %s at %s: %s",
				ref.Slug(), release.TagName, strings.Join(names, ", ")), nil)
	}
}

// defaultMatches implements the deterministic default convention: first
// archives whose name ends with "-<os>-<arch>.<ext>", then, when the
// publisher ships a single platform-neutral archive, any supported
// archive at all.
func (s AssetSelector) defaultMatches(assets []types.Asset) []types.Asset {
	var platformMatches []types.Asset
	var archiveMatches []types.Asset
	for _, asset := range assets {
		if asset.Format() == "" {
			continue
		}
		archiveMatches = append(archiveMatches, asset)
		base := trimArchiveSuffix(asset.Name)
		if strings.HasSuffix(base, "-"+s.Platform) {
			platformMatches = append(platformMatches, asset)
		}
	}
	if len(platformMatches) > 0 {
		return platformMatches
	}
	return archiveMatches
}

func trimArchiveSuffix(name string) string {
	for _, suffix := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
