package types

// AttestationVerdict is the outcome of provenance verification for a
// downloaded asset.
type AttestationVerdict string

const (
	// VerdictVerified means the attestation's subject digest matched the
	// downloaded bytes and its source repository matched the request.
	VerdictVerified AttestationVerdict = "verified"
	// VerdictUnverified means an attestation exists but one or more
	// verification steps failed or could not be completed.
	VerdictUnverified AttestationVerdict = "unverified"
	// VerdictAbsent means the attestation store holds no statement for
	// the asset's digest.
	VerdictAbsent AttestationVerdict = "absent"
)

type ArchiveFormat string

const (
	ArchiveFormatTarGz ArchiveFormat = "tar.gz"
	ArchiveFormatZip   ArchiveFormat = "zip"
)

// ItemKind distinguishes extractor installs from auxiliary query-pack
// installs, which skip the language capability check.
type ItemKind string

const (
	ItemKindExtractor ItemKind = "extractor"
	ItemKindPack      ItemKind = "pack"
)
