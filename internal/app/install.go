package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"extractor-installer/internal/core"
	"extractor-installer/internal/types"
)

// InstallAll runs the install pipeline for every requested item with
// bounded concurrency. One item's failure never cancels its siblings,
// and results come back in the caller's request order. In-flight items
// run to completion even when others have already failed, so the
// toolcache is never abandoned mid-extraction.
func (s Service) InstallAll(ctx context.Context, req InstallAllRequest) (InstallAllResult, error) {
	if len(req.Items) == 0 {
		return InstallAllResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no extractors requested")
	}

	results := make([]types.InstallationResult, len(req.Items))
	group := &errgroup.Group{}
	group.SetLimit(s.Concurrency)
	for i, item := range req.Items {
		group.Go(func() error {
			results[i] = s.installOne(ctx, item)
			return nil
		})
	}
	_ = group.Wait()

	summary := types.InstallSummary{Results: results}
	return InstallAllResult{Summary: summary}, nil
}

func (s Service) installOne(ctx context.Context, item ItemSpec) types.InstallationResult {
	start := s.Clock()
	result := types.InstallationResult{Kind: item.Kind}
	finish := func(err error) types.InstallationResult {
		result.Duration = s.Clock().Sub(start)
		result.Err = err
		result.FailureKind = types.KindOf(err)
		if err != nil && result.FailureKind == "" {
			result.FailureKind = types.FailureExtractionFailed
		}
		return result
	}

	// Items that never started before the deadline report Cancelled
	// without touching the network.
	if ctx.Err() != nil {
		result.Reference = types.ExtractorReference{}
		return finish(types.NewInstallError(
			types.FailureCancelled, "installation not started before deadline", ctx.Err()))
	}

	ref, err := core.ParseReference(item.Reference)
	if err != nil {
		return finish(err)
	}
	result.Reference = ref

	logger := log.Ctx(ctx).With().Str("reference", ref.String()).Logger()
	logger.Info().Msg("installing")

	release, err := s.fetchRelease(ctx, ref)
	if err != nil {
		return finish(err)
	}
	resolved, err := s.Selector.Select(ref, release)
	if err != nil {
		return finish(err)
	}
	result.Version = resolved.Tag

	key := types.CacheKey{
		Owner:    ref.Owner,
		Repo:     ref.Name,
		Tag:      resolved.Tag,
		Platform: s.Platform,
	}
	// Download and verification happen inside the open callback so a
	// completed cache entry is reused without any network traffic, and
	// a verification failure aborts before extraction begins.
	entry, err := s.Toolcache.InstallOrReuse(ctx, key, resolved.Chosen.Format(), func(ctx context.Context) (io.ReadCloser, error) {
		return s.downloadVerified(ctx, resolved, &result.Attestation)
	})
	if err != nil {
		return finish(err)
	}
	result.CacheReused = entry.Reused
	result.InstallPath = entry.Dir

	if item.Kind == types.ItemKindPack {
		// Packs have relaxed manifest requirements and no language
		// capability check.
		if !s.Manifests.HasPackManifest(entry) {
			logger.Debug().Msg("pack carries no manifest; accepting")
		}
		return finish(nil)
	}

	manifest, manifestDir, err := s.Manifests.ReadExtractorManifest(entry)
	if err != nil {
		return finish(err)
	}
	if err := core.ValidateManifest(manifest, item.Languages); err != nil {
		return finish(err)
	}
	result.InstallPath = manifestDir
	result.Languages = manifest.DeclaredLanguages()
	if manifest.Version != "" {
		result.Version = manifest.Version
	}
	logger.Info().
		Str("version", result.Version).
		Strs("languages", result.Languages).
		Msg("extractor ready")
	return finish(nil)
}

func (s Service) fetchRelease(ctx context.Context, ref types.ExtractorReference) (types.Release, error) {
	if ref.IsLatest() {
		return s.Releases.LatestRelease(ctx, ref.Owner, ref.Name)
	}
	return s.Releases.ReleaseByTag(ctx, ref.Owner, ref.Name, ref.Version)
}

// downloadVerified streams the chosen asset to a temporary spool,
// computes its digest independently, and runs provenance verification
// before handing the bytes over for extraction. The returned reader
// deletes the spool on close.
func (s Service) downloadVerified(ctx context.Context, resolved types.ResolvedRelease, attestation *types.AttestationResult) (io.ReadCloser, error) {
	stream, err := s.Releases.DownloadAsset(ctx, resolved.Chosen)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	spool, err := os.CreateTemp("", "extractor-asset-*")
	if err != nil {
		return nil, types.NewInstallError(
			types.FailureExtractionFailed, "failed to create download spool", err)
	}
	cleanup := func() {
		spool.Close()
		os.Remove(spool.Name())
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(spool, hasher), stream); err != nil {
		cleanup()
		return nil, types.NewInstallError(
			types.FailureNetworkError, "asset download interrupted", err)
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	log.Ctx(ctx).Debug().
		Str("asset", resolved.Chosen.Name).
		Str("sha256", digest).
		Msg("asset downloaded")

	statements, err := s.Attestations.AttestationsForDigest(ctx, resolved.Ref.Owner, resolved.Ref.Name, digest)
	if err != nil {
		cleanup()
		return nil, err
	}
	verdict := core.EvaluateProvenance(resolved.Ref, digest, statements)
	*attestation = verdict
	if err := s.Policy.Admit(ctx, resolved.Ref, verdict); err != nil {
		cleanup()
		return nil, err
	}

	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, types.NewInstallError(
			types.FailureExtractionFailed, "failed to rewind download spool", err)
	}
	return &spoolReader{file: spool}, nil
}

type spoolReader struct {
	file *os.File
}

func (r *spoolReader) Read(p []byte) (int, error) {
	return r.file.Read(p)
}

func (r *spoolReader) Close() error {
	err := r.file.Close()
	os.Remove(r.file.Name())
	return err
}
