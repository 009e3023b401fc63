package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssetFormat(t *testing.T) {
	cases := []struct {
		name string
		want ArchiveFormat
	}{
		{"extractor-linux-amd64.tar.gz", ArchiveFormatTarGz},
		{"extractor.tgz", ArchiveFormatTarGz},
		{"extractor-windows.zip", ArchiveFormatZip},
		{"checksums.txt", ""},
		{"extractor.tar", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Asset{Name: tc.name}.Format(), "name=%q", tc.name)
	}
}

func TestCacheKeyRelPath(t *testing.T) {
	key := CacheKey{Owner: "octo-org", Repo: "swift-extractor", Tag: "v1.2.0", Platform: "linux-amd64"}
	require.Equal(t, "octo-org/swift-extractor/v1.2.0/linux-amd64", key.RelPath())
}

func TestManifestSupports(t *testing.T) {
	manifest := ExtractorManifest{Name: "swift", Languages: []string{"Swift", "objective-c"}}
	require.True(t, manifest.Supports("swift"))
	require.True(t, manifest.Supports("  OBJECTIVE-C "))
	require.False(t, manifest.Supports("kotlin"))
}

func TestSummaryFailedPreservesOrder(t *testing.T) {
	summary := InstallSummary{Results: []InstallationResult{
		{Reference: ExtractorReference{Owner: "a", Name: "one"}},
		{Reference: ExtractorReference{Owner: "b", Name: "two"}, Err: NewInstallError(FailureAssetNotFound, "no asset", nil)},
		{Reference: ExtractorReference{Owner: "c", Name: "three"}, Err: NewInstallError(FailureCancelled, "deadline", nil)},
	}}
	failed := summary.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, "two", failed[0].Reference.Name)
	require.Equal(t, "three", failed[1].Reference.Name)
	require.False(t, summary.AllSucceeded())
}
