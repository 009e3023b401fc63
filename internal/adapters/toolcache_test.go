package adapters

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"extractor-installer/internal/types"
	"extractor-installer/tests/testutil"
)

func testKey() types.CacheKey {
	return types.CacheKey{Owner: "octo-org", Repo: "swift-extractor", Tag: "v1.2.0", Platform: "linux-amd64"}
}

func testArchive(t *testing.T) []byte {
	return testutil.ExtractorArchive(t, "swift-extractor", "name: swift\nversion: 1.2.0\n")
}

func openerFor(archive []byte, calls *atomic.Int32) func(context.Context) (io.ReadCloser, error) {
	return func(context.Context) (io.ReadCloser, error) {
		calls.Add(1)
		return io.NopCloser(bytes.NewReader(archive)), nil
	}
}

func TestInstallOrReuseExtractsOnce(t *testing.T) {
	cache := NewToolcacheAdapter(t.TempDir())
	var calls atomic.Int32
	open := openerFor(testArchive(t), &calls)

	entry, err := cache.InstallOrReuse(t.Context(), testKey(), types.ArchiveFormatTarGz, open)
	require.NoError(t, err)
	require.False(t, entry.Reused)
	require.FileExists(t, filepath.Join(entry.Dir, "swift-extractor", "codeql-extractor.yml"))
	require.FileExists(t, filepath.Join(entry.Dir, completionMarker))

	// Second request reuses the completed entry without opening the
	// stream again.
	again, err := cache.InstallOrReuse(t.Context(), testKey(), types.ArchiveFormatTarGz, open)
	require.NoError(t, err)
	require.True(t, again.Reused)
	require.Equal(t, entry.Dir, again.Dir)
	require.Equal(t, int32(1), calls.Load())
}

func TestInstallOrReuseSetsToolPermissions(t *testing.T) {
	cache := NewToolcacheAdapter(t.TempDir())
	var calls atomic.Int32

	entry, err := cache.InstallOrReuse(t.Context(), testKey(), types.ArchiveFormatTarGz, openerFor(testArchive(t), &calls))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(entry.Dir, "swift-extractor", "tools", "extractor"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestInstallOrReuseWipesIncompleteEntry(t *testing.T) {
	root := t.TempDir()
	cache := NewToolcacheAdapter(root)
	key := testKey()

	// Simulate an interrupted prior extraction: contents but no marker.
	stale := filepath.Join(root, key.RelPath())
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "leftover.bin"), []byte("partial"), 0o644))

	var calls atomic.Int32
	entry, err := cache.InstallOrReuse(t.Context(), key, types.ArchiveFormatTarGz, openerFor(testArchive(t), &calls))
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
	require.NoFileExists(t, filepath.Join(entry.Dir, "leftover.bin"))
	require.FileExists(t, filepath.Join(entry.Dir, completionMarker))
}

func TestInstallOrReuseFailureLeavesNoEntry(t *testing.T) {
	root := t.TempDir()
	cache := NewToolcacheAdapter(root)
	key := testKey()

	open := func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("not gzip"))), nil
	}
	_, err := cache.InstallOrReuse(t.Context(), key, types.ArchiveFormatTarGz, open)
	require.Error(t, err)
	require.NoDirExists(t, filepath.Join(root, key.RelPath()))

	_, ok := cache.Lookup(key)
	require.False(t, ok)
}

func TestInstallOrReuseConcurrentRequestsShareOneExtraction(t *testing.T) {
	cache := NewToolcacheAdapter(t.TempDir())
	var calls atomic.Int32
	archive := testArchive(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = cache.InstallOrReuse(t.Context(), testKey(), types.ArchiveFormatTarGz, openerFor(archive, &calls))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestEntriesAndPrune(t *testing.T) {
	root := t.TempDir()
	cache := NewToolcacheAdapter(root)
	var calls atomic.Int32

	_, err := cache.InstallOrReuse(t.Context(), testKey(), types.ArchiveFormatTarGz, openerFor(testArchive(t), &calls))
	require.NoError(t, err)

	other := types.CacheKey{Owner: "octo-org", Repo: "swift-extractor", Tag: "v2.0.0", Platform: "linux-amd64"}
	// A second, interrupted entry with no completion marker.
	incomplete := filepath.Join(root, other.RelPath())
	require.NoError(t, os.MkdirAll(incomplete, 0o755))

	entries, err := cache.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, testKey(), entries[0].Key)

	removed, err := cache.Prune(true)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.NoDirExists(t, incomplete)
	_, ok := cache.Lookup(testKey())
	require.True(t, ok)

	removed, err = cache.Prune(false)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	_, ok = cache.Lookup(testKey())
	require.False(t, ok)
}

func TestEntriesEmptyRoot(t *testing.T) {
	cache := NewToolcacheAdapter(filepath.Join(t.TempDir(), "missing"))
	entries, err := cache.Entries()
	require.NoError(t, err)
	require.Empty(t, entries)
}
