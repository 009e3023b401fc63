package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"extractor-installer/internal/ports"
	"extractor-installer/internal/shared"
	"extractor-installer/internal/types"
)

const (
	defaultAPIBaseURL    = "https://api.github.com"
	defaultRetryMax      = 4
	defaultRetryWaitMin  = 500 * time.Millisecond
	defaultRetryWaitMax  = 8 * time.Second
	defaultClientTimeout = 5 * time.Minute
)

// GitHubReleaseAdapter implements the release-hosting contract against
// the GitHub REST API. Transient failures (429, 5xx, network errors)
// are retried with bounded exponential backoff; 4xx responses are not.
type GitHubReleaseAdapter struct {
	BaseURL   string
	Token     string
	UserAgent string
	client    *retryablehttp.Client
}

func NewGitHubReleaseAdapter(baseURL string, token string, userAgent string) *GitHubReleaseAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultAPIBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "extractor-installer"
	}
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.RetryWaitMin = defaultRetryWaitMin
	client.RetryWaitMax = defaultRetryWaitMax
	client.HTTPClient.Timeout = defaultClientTimeout
	client.Logger = nil
	// Surface the final 429/5xx response after the retry budget is
	// spent so it can be mapped onto the failure taxonomy.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &GitHubReleaseAdapter{
		BaseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:     strings.TrimSpace(token),
		UserAgent: userAgent,
		client:    client,
	}
}

// githubRelease mirrors the GitHub API release payload.
type githubRelease struct {
	TagName     string        `json:"tag_name"`
	Draft       bool          `json:"draft"`
	Prerelease  bool          `json:"prerelease"`
	PublishedAt string        `json:"published_at"`
	Assets      []githubAsset `json:"assets"`
}

type githubAsset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
	URL                string `json:"url"`
}

func (a *GitHubReleaseAdapter) LatestRelease(ctx context.Context, owner string, repo string) (types.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", a.BaseURL, owner, repo)
	var payload githubRelease
	if err := a.getJSON(ctx, url, &payload); err != nil {
		return types.Release{}, releaseLookupError(err, fmt.Sprintf("%s/%s has no published release", owner, repo))
	}
	release := toRelease(payload)
	// The latest endpoint already excludes drafts and prereleases;
	// keep the guard in case a proxy serves a stale object.
	if release.Draft || release.Prerelease {
		return types.Release{}, types.NewInstallError(
			types.FailureReleaseNotFound,
			fmt.Sprintf("%s/%s latest release is not a published release", owner, repo), nil)
	}
	log.Ctx(ctx).Debug().
		Str("repository", owner+"/"+repo).
		Str("tag", release.TagName).
		Msg("latest release resolved")
	return release, nil
}

func (a *GitHubReleaseAdapter) ReleaseByTag(ctx context.Context, owner string, repo string, tag string) (types.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", a.BaseURL, owner, repo, tag)
	var payload githubRelease
	if err := a.getJSON(ctx, url, &payload); err != nil {
		return types.Release{}, releaseLookupError(err, fmt.Sprintf("%s/%s has no release tagged %s", owner, repo, tag))
	}
	log.Ctx(ctx).Debug().
		Str("repository", owner+"/"+repo).
		Str("tag", tag).
		Msg("release fetched by tag")
	return toRelease(payload), nil
}

func (a *GitHubReleaseAdapter) DownloadAsset(ctx context.Context, asset types.Asset) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return nil, types.NewInstallError(
			types.FailureNetworkError, "failed to build asset download request", err)
	}
	a.setHeaders(req.Header)
	req.Header.Set("Accept", "application/octet-stream")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, asset.DownloadURL)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, asset.DownloadURL, string(body))
	}
	return resp.Body, nil
}

func (a *GitHubReleaseAdapter) getJSON(ctx context.Context, url string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.NewInstallError(
			types.FailureNetworkError, "failed to build API request", err)
	}
	a.setHeaders(req.Header)
	resp, err := a.client.Do(req)
	if err != nil {
		return transportError(ctx, err, url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return statusError(resp.StatusCode, url, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewInstallError(
			types.FailureNetworkError, "failed to decode API response", err)
	}
	return nil
}

func (a *GitHubReleaseAdapter) setHeaders(header http.Header) {
	header.Set("Accept", "application/vnd.github+json")
	header.Set("User-Agent", a.UserAgent)
	if a.Token != "" {
		header.Set("Authorization", "Bearer "+a.Token)
	}
}

func toRelease(payload githubRelease) types.Release {
	release := types.Release{
		TagName:    payload.TagName,
		Draft:      payload.Draft,
		Prerelease: payload.Prerelease,
	}
	if published, err := time.Parse(time.RFC3339, payload.PublishedAt); err == nil {
		release.PublishedAt = published
	}
	for _, asset := range payload.Assets {
		downloadURL := asset.BrowserDownloadURL
		if downloadURL == "" {
			downloadURL = asset.URL
		}
		release.Assets = append(release.Assets, types.Asset{
			ID:          asset.ID,
			Name:        asset.Name,
			Size:        asset.Size,
			DownloadURL: downloadURL,
		})
	}
	return release
}

// releaseLookupError rewrites a 404 into ReleaseNotFound with a
// caller-facing message; every other error passes through.
func releaseLookupError(err error, notFoundMsg string) error {
	if types.KindOf(err) == types.FailureReleaseNotFound {
		return types.NewInstallError(types.FailureReleaseNotFound, notFoundMsg, err)
	}
	return err
}

// statusError maps a terminal HTTP status (after the retry budget is
// exhausted for retryable ones) onto the failure taxonomy.
func statusError(status int, url string, body string) error {
	cause := shared.HTTPStatusErrorWithBody(status, url, body)
	switch {
	case status == http.StatusNotFound:
		return types.NewInstallError(types.FailureReleaseNotFound, "release not found", cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewInstallError(types.FailureNetworkError, "hosting API rejected credentials", cause)
	case status == http.StatusTooManyRequests:
		return types.NewInstallError(types.FailureRateLimited, "hosting API rate limit exhausted after retries", cause)
	case status >= http.StatusInternalServerError:
		return types.NewInstallError(types.FailureNetworkError, "hosting API unavailable after retries", cause)
	default:
		return types.NewInstallError(types.FailureNetworkError, "unexpected hosting API response", cause)
	}
}

func transportError(ctx context.Context, err error, url string) error {
	if ctx.Err() != nil {
		return types.NewInstallError(types.FailureCancelled, "request cancelled", ctx.Err())
	}
	return types.NewInstallError(
		types.FailureNetworkError,
		fmt.Sprintf("request to %s failed after retries", url), err)
}

var _ ports.ReleaseHostPort = (*GitHubReleaseAdapter)(nil)
