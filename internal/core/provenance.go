package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"extractor-installer/internal/types"
)

// ProvenanceStatement is the neutral shape of one attestation fetched
// from the hosting platform's attestation store, already decoded from
// its envelope by the adapter layer.
type ProvenanceStatement struct {
	PredicateType  string
	SubjectDigests []string
	SourceRepo     string
	BuilderID      string
	SignatureCount int
}

// EvaluateProvenance decides the attestation verdict for a downloaded
// asset. digest is the sha256 of the downloaded bytes, computed
// independently of anything the attestation claims. Every check fails
// closed: a statement that cannot be fully confirmed never yields
// "verified".
func EvaluateProvenance(ref types.ExtractorReference, digest string, statements []ProvenanceStatement) types.AttestationResult {
	result := types.AttestationResult{
		Verdict:       types.VerdictAbsent,
		SubjectDigest: digest,
	}
	if len(statements) == 0 {
		result.Reason = "no attestation found for artifact digest"
		return result
	}

	result.Verdict = types.VerdictUnverified
	for _, statement := range statements {
		reason := checkStatement(ref, digest, statement)
		if reason == "" {
			result.Verdict = types.VerdictVerified
			result.BuilderID = statement.BuilderID
			result.SourceRepo = statement.SourceRepo
			result.Reason = ""
			log.Debug().
				Str("reference", ref.Slug()).
				Str("builder", statement.BuilderID).
				Msg("provenance verified")
			return result
		}
		if result.Reason == "" {
			result.Reason = reason
		}
	}
	return result
}

// checkStatement returns an empty string when the statement fully
// verifies, or the first failed check otherwise.
func checkStatement(ref types.ExtractorReference, digest string, statement ProvenanceStatement) string {
	if statement.SignatureCount == 0 {
		return "attestation envelope carries no signature"
	}
	if !digestListed(digest, statement.SubjectDigests) {
		return fmt.Sprintf("attestation subject digest does not match downloaded bytes (%s)", digest)
	}
	// An attestation for a different repository must not transfer
	// trust, even when cryptographically valid.
	if !repoMatches(ref, statement.SourceRepo) {
		return fmt.Sprintf("attestation claims source repository %q, expected %s",
			statement.SourceRepo, ref.Slug())
	}
	if statement.BuilderID == "" {
		return "attestation does not identify a builder"
	}
	return ""
}

func digestListed(digest string, subjects []string) bool {
	for _, subject := range subjects {
		if strings.EqualFold(strings.TrimSpace(subject), digest) {
			return true
		}
	}
	return false
}

// repoMatches accepts the owner/name pair in bare or URL form.
func repoMatches(ref types.ExtractorReference, claimed string) bool {
	normalized := strings.TrimSuffix(strings.TrimSpace(claimed), "/")
	normalized = strings.TrimSuffix(normalized, ".git")
	lower := strings.ToLower(normalized)
	slug := strings.ToLower(ref.Slug())
	if lower == slug {
		return true
	}
	return strings.HasSuffix(lower, "/"+slug)
}
