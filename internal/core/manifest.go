package core

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"extractor-installer/internal/types"
)

// ValidateManifest cross-checks an installed extractor's manifest
// against the caller's requested languages. An empty request accepts
// every declared language. The cache entry itself stays valid on
// rejection; only the use of it for the requested languages is refused.
func ValidateManifest(manifest types.ExtractorManifest, requested []string) error {
	if strings.TrimSpace(manifest.Name) == "" {
		return types.NewInstallError(
			types.FailureManifestMalformed, "manifest does not declare an extractor name", nil)
	}
	if manifest.Version != "" && !validSemver(manifest.Version) {
		return types.NewInstallError(
			types.FailureManifestMalformed,
			fmt.Sprintf("manifest for %s declares invalid version %q", manifest.Name, manifest.Version), nil)
	}

	if len(requested) == 0 {
		return nil
	}
	var missing []string
	for _, language := range requested {
		if !manifest.Supports(language) {
			missing = append(missing, strings.TrimSpace(language))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return types.NewInstallError(
			types.FailureCapabilityMismatch,
			fmt.Sprintf("extractor %s does not support requested language(s): %s",
				manifest.Name, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// validSemver accepts tags with or without the leading "v" that
// golang.org/x/mod/semver requires.
func validSemver(version string) bool {
	candidate := strings.TrimSpace(version)
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	return semver.IsValid(candidate)
}

// CompareTags orders two release tags, newest last, using semver
// precedence when both parse and falling back to lexical order.
func CompareTags(a string, b string) int {
	va, vb := strings.TrimSpace(a), strings.TrimSpace(b)
	if !strings.HasPrefix(va, "v") {
		va = "v" + va
	}
	if !strings.HasPrefix(vb, "v") {
		vb = "v" + vb
	}
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}
