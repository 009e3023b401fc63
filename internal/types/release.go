package types

import "time"

// Release mirrors the hosting API's release object, reduced to the
// fields the installer consumes.
type Release struct {
	TagName     string
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
	Assets      []Asset
}

// Asset is a downloadable artifact attached to a release.
type Asset struct {
	ID          int64
	Name        string
	Size        int64
	DownloadURL string
}

// Format returns the archive format implied by the asset name, or an
// empty format for unsupported names.
func (a Asset) Format() ArchiveFormat {
	switch {
	case hasSuffix(a.Name, ".tar.gz"), hasSuffix(a.Name, ".tgz"):
		return ArchiveFormatTarGz
	case hasSuffix(a.Name, ".zip"):
		return ArchiveFormatZip
	default:
		return ""
	}
}

func hasSuffix(name string, suffix string) bool {
	return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
}

// ResolvedRelease binds a reference to the concrete release tag and the
// single asset chosen for download. Resolution fails rather than pick
// arbitrarily when more than one asset matches.
type ResolvedRelease struct {
	Ref        ExtractorReference
	Tag        string
	Candidates []Asset
	Chosen     Asset
}

// AttestationResult is the verdict of provenance verification plus the
// identity claims extracted from the attestation statement.
type AttestationResult struct {
	Verdict       AttestationVerdict
	BuilderID     string
	SourceRepo    string
	SubjectDigest string
	Reason        string
}
