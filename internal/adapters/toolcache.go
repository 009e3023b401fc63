package adapters

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"extractor-installer/internal/ports"
	"extractor-installer/internal/types"
)

const (
	completionMarker = ".complete"
	lockFileName     = ".lock"
	lockPollInterval = 100 * time.Millisecond
	lockStaleAfter   = 10 * time.Minute
	maxEntrySize     = 4 << 30
)

// ToolcacheAdapter manages the persistent cache of extracted
// installations under a single root directory. Concurrent requests for
// the same key within one process are deduplicated with singleflight;
// concurrent processes are excluded with an advisory lock file. Readers
// only ever trust entries whose completion marker exists.
type ToolcacheAdapter struct {
	Root  string
	group singleflight.Group
}

func NewToolcacheAdapter(root string) *ToolcacheAdapter {
	return &ToolcacheAdapter{Root: root}
}

func (t *ToolcacheAdapter) entryDir(key types.CacheKey) string {
	return filepath.Join(t.Root, key.RelPath())
}

func (t *ToolcacheAdapter) Lookup(key types.CacheKey) (types.CacheEntry, bool) {
	dir := t.entryDir(key)
	if _, err := os.Stat(filepath.Join(dir, completionMarker)); err != nil {
		return types.CacheEntry{}, false
	}
	return types.CacheEntry{Key: key, Dir: dir, Complete: true, Reused: true}, true
}

// InstallOrReuse extracts the archive into the key's directory exactly
// once. open is only invoked when no completed entry exists, so a cache
// hit never touches the network. The completion marker is written only
// after extraction fully succeeds; a crash mid-extraction leaves a
// markerless directory that the next run wipes and redoes.
func (t *ToolcacheAdapter) InstallOrReuse(ctx context.Context, key types.CacheKey, format types.ArchiveFormat, open func(context.Context) (io.ReadCloser, error)) (types.CacheEntry, error) {
	assert.NotEmpty(ctx, key.Owner, "cache key owner must be set")
	assert.NotEmpty(ctx, key.Repo, "cache key repo must be set")
	assert.NotEmpty(ctx, key.Tag, "cache key tag must be set")
	assert.NotEmpty(ctx, key.Platform, "cache key platform must be set")

	result, err, shared := t.group.Do(key.RelPath(), func() (any, error) {
		return t.installOrReuseLocked(ctx, key, format, open)
	})
	if err != nil {
		return types.CacheEntry{}, err
	}
	entry := result.(types.CacheEntry)
	if shared {
		entry.Reused = true
	}
	return entry, nil
}

func (t *ToolcacheAdapter) installOrReuseLocked(ctx context.Context, key types.CacheKey, format types.ArchiveFormat, open func(context.Context) (io.ReadCloser, error)) (types.CacheEntry, error) {
	if entry, ok := t.Lookup(key); ok {
		log.Ctx(ctx).Debug().Str("dir", entry.Dir).Msg("toolcache hit")
		return entry, nil
	}

	dir := t.entryDir(key)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return types.CacheEntry{}, types.NewInstallError(
			types.FailureExtractionFailed, "failed to create toolcache directory", err)
	}

	unlock, err := t.acquireLock(ctx, parent, key)
	if err != nil {
		return types.CacheEntry{}, err
	}
	defer unlock()

	// Another process may have completed the entry while this one
	// waited for the lock.
	if entry, ok := t.Lookup(key); ok {
		log.Ctx(ctx).Debug().Str("dir", entry.Dir).Msg("toolcache hit after lock wait")
		return entry, nil
	}

	// A directory without a completion marker is a remnant of an
	// interrupted extraction; never trust partial contents.
	if _, statErr := os.Stat(dir); statErr == nil {
		log.Ctx(ctx).Warn().Str("dir", dir).Msg("removing incomplete toolcache entry")
		if err := os.RemoveAll(dir); err != nil {
			return types.CacheEntry{}, types.NewInstallError(
				types.FailureExtractionFailed, "failed to clear incomplete toolcache entry", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.CacheEntry{}, types.NewInstallError(
			types.FailureExtractionFailed, "failed to create toolcache entry", err)
	}

	stream, err := open(ctx)
	if err != nil {
		_ = os.RemoveAll(dir)
		return types.CacheEntry{}, err
	}
	defer stream.Close()

	if err := extractArchive(ctx, stream, format, dir); err != nil {
		_ = os.RemoveAll(dir)
		return types.CacheEntry{}, err
	}
	if err := fixToolPermissions(dir); err != nil {
		_ = os.RemoveAll(dir)
		return types.CacheEntry{}, err
	}

	if err := os.WriteFile(filepath.Join(dir, completionMarker), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return types.CacheEntry{}, types.NewInstallError(
			types.FailureExtractionFailed, "failed to write completion marker", err)
	}
	log.Ctx(ctx).Info().Str("dir", dir).Msg("extractor installed into toolcache")
	return types.CacheEntry{Key: key, Dir: dir, Complete: true}, nil
}

// acquireLock takes the per-key advisory lock file, waiting for a
// concurrent holder and taking over locks left behind by crashed
// processes.
func (t *ToolcacheAdapter) acquireLock(ctx context.Context, parent string, key types.CacheKey) (func(), error) {
	lockPath := filepath.Join(parent, key.Platform+lockFileName)
	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(file, "%d\n", os.Getpid())
			file.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, types.NewInstallError(
				types.FailureExtractionFailed, "failed to create toolcache lock", err)
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			log.Ctx(ctx).Warn().Str("lock", lockPath).Msg("removing stale toolcache lock")
			_ = os.Remove(lockPath)
			continue
		}
		select {
		case <-ctx.Done():
			return nil, types.NewInstallError(
				types.FailureCancelled, "cancelled while waiting for toolcache lock", ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

func (t *ToolcacheAdapter) Entries() ([]types.CacheEntry, error) {
	var entries []types.CacheEntry
	err := filepath.WalkDir(t.Root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if entry.IsDir() || entry.Name() != completionMarker {
			return nil
		}
		dir := filepath.Dir(path)
		rel, relErr := filepath.Rel(t.Root, dir)
		if relErr != nil {
			return relErr
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 4 {
			return nil
		}
		entries = append(entries, types.CacheEntry{
			Key:      types.CacheKey{Owner: parts[0], Repo: parts[1], Tag: parts[2], Platform: parts[3]},
			Dir:      dir,
			Complete: true,
		})
		return nil
	})
	if err != nil {
		return nil, types.NewInstallError(
			types.FailureExtractionFailed, "failed to scan toolcache", err)
	}
	return entries, nil
}

// Prune removes cache entries. With incompleteOnly it removes only
// markerless directories left by interrupted runs.
func (t *ToolcacheAdapter) Prune(incompleteOnly bool) (int, error) {
	removed := 0
	owners, err := os.ReadDir(t.Root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, types.NewInstallError(
			types.FailureExtractionFailed, "failed to read toolcache root", err)
	}
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		repos, _ := os.ReadDir(filepath.Join(t.Root, owner.Name()))
		for _, repo := range repos {
			if !repo.IsDir() {
				continue
			}
			tags, _ := os.ReadDir(filepath.Join(t.Root, owner.Name(), repo.Name()))
			for _, tag := range tags {
				if !tag.IsDir() {
					continue
				}
				platforms, _ := os.ReadDir(filepath.Join(t.Root, owner.Name(), repo.Name(), tag.Name()))
				for _, platform := range platforms {
					if !platform.IsDir() {
						continue
					}
					dir := filepath.Join(t.Root, owner.Name(), repo.Name(), tag.Name(), platform.Name())
					_, markerErr := os.Stat(filepath.Join(dir, completionMarker))
					complete := markerErr == nil
					if incompleteOnly && complete {
						continue
					}
					if err := os.RemoveAll(dir); err != nil {
						return removed, types.NewInstallError(
							types.FailureExtractionFailed, "failed to prune toolcache entry", err)
					}
					removed++
				}
			}
		}
	}
	return removed, nil
}

var _ ports.ToolcachePort = (*ToolcacheAdapter)(nil)
