package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"extractor-installer/internal/types"
)

func release(tag string, assetNames ...string) types.Release {
	r := types.Release{TagName: tag}
	for i, name := range assetNames {
		r.Assets = append(r.Assets, types.Asset{
			ID:          int64(i + 1),
			Name:        name,
			Size:        1024,
			DownloadURL: "https://releases.example/" + name,
		})
	}
	return r
}

func TestSelectDefaultPrefersPlatformArchive(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{Owner: "octo-org", Name: "swift-extractor", Version: "latest"}

	resolved, err := selector.Select(ref, release("v1.2.0",
		"swift-extractor-v1.2.0-linux-amd64.tar.gz",
		"swift-extractor-v1.2.0-darwin-arm64.tar.gz",
		"checksums.txt",
	))
	require.NoError(t, err)
	require.Equal(t, "swift-extractor-v1.2.0-linux-amd64.tar.gz", resolved.Chosen.Name)
	require.Equal(t, "v1.2.0", resolved.Tag)
}

func TestSelectDefaultFallsBackToSingleArchive(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{Owner: "octo-org", Name: "swift-extractor", Version: "latest"}

	resolved, err := selector.Select(ref, release("v1.2.0",
		"swift-extractor.tar.gz",
		"README.md",
	))
	require.NoError(t, err)
	require.Equal(t, "swift-extractor.tar.gz", resolved.Chosen.Name)
}

func TestSelectExplicitPattern(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{
		Owner: "octo-org", Name: "swift-extractor",
		Version: "v1.2.0", AssetPattern: "*-musl.tar.gz",
	}

	resolved, err := selector.Select(ref, release("v1.2.0",
		"swift-extractor-linux-amd64.tar.gz",
		"swift-extractor-musl.tar.gz",
	))
	require.NoError(t, err)
	require.Equal(t, "swift-extractor-musl.tar.gz", resolved.Chosen.Name)
}

func TestSelectAmbiguityIsAnError(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{
		Owner: "octo-org", Name: "swift-extractor",
		Version: "v1.2.0", AssetPattern: "*.tar.gz",
	}

	_, err := selector.Select(ref, release("v1.2.0",
		"swift-extractor-a.tar.gz",
		"swift-extractor-b.tar.gz",
	))
	require.Error(t, err)
	require.Equal(t, types.FailureAssetAmbiguous, types.KindOf(err))
	// The error names every candidate so the caller can narrow the
	// pattern.
	require.Contains(t, err.Error(), "swift-extractor-a.tar.gz")
	require.Contains(t, err.Error(), "swift-extractor-b.tar.gz")
}

func TestSelectNoArchiveAsset(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{Owner: "octo-org", Name: "swift-extractor", Version: "latest"}

	_, err := selector.Select(ref, release("v1.2.0", "checksums.txt", "notes.md"))
	require.Error(t, err)
	require.Equal(t, types.FailureAssetNotFound, types.KindOf(err))
}

func TestSelectInvalidGlob(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{
		Owner: "octo-org", Name: "swift-extractor",
		Version: "v1.2.0", AssetPattern: "[",
	}

	_, err := selector.Select(ref, release("v1.2.0", "swift-extractor.tar.gz"))
	require.Error(t, err)
	require.Equal(t, types.FailureMalformedReference, types.KindOf(err))
}

func TestSelectMultiplePlatformArchivesAmbiguous(t *testing.T) {
	selector := NewAssetSelector("linux-amd64")
	ref := types.ExtractorReference{Owner: "octo-org", Name: "swift-extractor", Version: "latest"}

	_, err := selector.Select(ref, release("v1.2.0",
		"swift-extractor-linux-amd64.tar.gz",
		"swift-extractor-linux-amd64.zip",
	))
	require.Error(t, err)
	require.Equal(t, types.FailureAssetAmbiguous, types.KindOf(err))
}
