package ports

import (
	"context"
	"io"

	"extractor-installer/internal/types"
)

// ReleaseHostPort is the abstract release-hosting API contract. Latest
// excludes drafts and prereleases. Implementations retry transient
// failures internally; callers only see exhausted-retry errors.
type ReleaseHostPort interface {
	LatestRelease(ctx context.Context, owner string, repo string) (types.Release, error)
	ReleaseByTag(ctx context.Context, owner string, repo string, tag string) (types.Release, error)
	DownloadAsset(ctx context.Context, asset types.Asset) (io.ReadCloser, error)
}
