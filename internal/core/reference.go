package core

import (
	"fmt"
	"strings"

	"extractor-installer/internal/shared"
	"extractor-installer/internal/types"
)

// ParseReference parses owner/repo[@ref[:asset-glob]] into an
// ExtractorReference. It performs no network or filesystem access; the
// identifier grammar is enforced here so malformed or hostile input is
// rejected before it can reach a request path or the toolcache.
func ParseReference(input string) (types.ExtractorReference, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return types.ExtractorReference{}, types.NewInstallError(
			types.FailureMalformedReference, "extractor reference is empty", nil)
	}

	rest := trimmed
	pattern := ""
	version := "latest"
	if at := strings.Index(rest, "@"); at >= 0 {
		refPart := rest[at+1:]
		rest = rest[:at]
		if colon := strings.Index(refPart, ":"); colon >= 0 {
			pattern = strings.TrimSpace(refPart[colon+1:])
			refPart = refPart[:colon]
		}
		refPart = strings.TrimSpace(refPart)
		if refPart == "" {
			return types.ExtractorReference{}, types.NewInstallError(
				types.FailureMalformedReference,
				fmt.Sprintf("reference %q has an empty version selector", trimmed), nil)
		}
		version = refPart
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return types.ExtractorReference{}, types.NewInstallError(
			types.FailureMalformedReference,
			fmt.Sprintf("reference %q must be of the form owner/repo", trimmed), nil)
	}
	owner := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if !shared.ValidIdentifier(owner) {
		return types.ExtractorReference{}, types.NewInstallError(
			types.FailureMalformedReference,
			fmt.Sprintf("reference %q has an invalid owner", trimmed), nil)
	}
	if !shared.ValidIdentifier(name) {
		return types.ExtractorReference{}, types.NewInstallError(
			types.FailureMalformedReference,
			fmt.Sprintf("reference %q has an invalid repository name", trimmed), nil)
	}
	if err := validateVersionSelector(version); err != nil {
		return types.ExtractorReference{}, err
	}

	return types.ExtractorReference{
		Owner:        owner,
		Name:         name,
		Version:      version,
		AssetPattern: pattern,
	}, nil
}

// validateVersionSelector accepts "latest" or a tag made of the same
// narrow character set as identifiers plus "+" for build metadata.
func validateVersionSelector(version string) error {
	if version == "latest" {
		return nil
	}
	for _, ch := range version {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.' || ch == '+':
		default:
			return types.NewInstallError(
				types.FailureMalformedReference,
				fmt.Sprintf("version selector %q contains invalid characters", version), nil)
		}
	}
	if version == "." || version == ".." || strings.Contains(version, "..") {
		return types.NewInstallError(
			types.FailureMalformedReference,
			fmt.Sprintf("version selector %q is not a valid tag", version), nil)
	}
	return nil
}
