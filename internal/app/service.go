package app

import (
	"fmt"
	"runtime"
	"time"

	"extractor-installer/internal/adapters"
	"extractor-installer/internal/core"
	"extractor-installer/internal/policies"
	"extractor-installer/internal/ports"
)

const defaultConcurrency = 3

// Config collects the process-wide settings the service needs; it is
// read once at startup and passed in explicitly.
type Config struct {
	APIBaseURL  string
	Token       string
	CacheDir    string
	Platform    string
	Attestation bool
	Concurrency int
}

type Service struct {
	Releases     ports.ReleaseHostPort
	Attestations ports.AttestationStorePort
	Toolcache    ports.ToolcachePort
	Manifests    ports.ManifestPort
	ResultSink   ports.ResultSinkPort
	Selector     core.AssetSelector
	Policy       policies.AttestationPolicy
	Platform     string
	Concurrency  int
	Clock        func() time.Time
}

func NewService(cfg Config) Service {
	platform := cfg.Platform
	if platform == "" {
		platform = fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	releases := adapters.NewGitHubReleaseAdapter(cfg.APIBaseURL, cfg.Token, "extractor-installer")
	return Service{
		Releases:     releases,
		Attestations: adapters.NewAttestationStoreAdapter(releases),
		Toolcache:    adapters.NewToolcacheAdapter(cfg.CacheDir),
		Manifests:    adapters.NewManifestReaderAdapter(),
		ResultSink:   adapters.NewPipelineEnvAdapter(),
		Selector:     core.NewAssetSelector(platform),
		Policy:       policies.NewAttestationPolicy(cfg.Attestation),
		Platform:     platform,
		Concurrency:  concurrency,
		Clock:        time.Now,
	}
}
