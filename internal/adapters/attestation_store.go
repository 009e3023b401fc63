package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"extractor-installer/internal/core"
	"extractor-installer/internal/ports"
	"extractor-installer/internal/types"
)

// AttestationStoreAdapter retrieves provenance statements from the
// hosting platform's attestation endpoint, keyed by artifact digest.
// It reuses the release adapter's retrying HTTP client and credentials.
type AttestationStoreAdapter struct {
	releases *GitHubReleaseAdapter
}

func NewAttestationStoreAdapter(releases *GitHubReleaseAdapter) *AttestationStoreAdapter {
	return &AttestationStoreAdapter{releases: releases}
}

// attestationList mirrors the attestation API payload: a list of
// signed DSSE envelopes, each wrapping a base64 in-toto statement.
type attestationList struct {
	Attestations []struct {
		Bundle struct {
			DSSEEnvelope dsseEnvelope `json:"dsseEnvelope"`
		} `json:"bundle"`
	} `json:"attestations"`
}

type dsseEnvelope struct {
	Payload     string `json:"payload"`
	PayloadType string `json:"payloadType"`
	Signatures  []struct {
		Sig string `json:"sig"`
	} `json:"signatures"`
}

// intotoStatement is the subset of the in-toto statement the verifier
// consumes.
type intotoStatement struct {
	PredicateType string `json:"predicateType"`
	Subject       []struct {
		Name   string            `json:"name"`
		Digest map[string]string `json:"digest"`
	} `json:"subject"`
	Predicate struct {
		BuildDefinition struct {
			ExternalParameters struct {
				Workflow struct {
					Repository string `json:"repository"`
				} `json:"workflow"`
			} `json:"externalParameters"`
		} `json:"buildDefinition"`
		RunDetails struct {
			Builder struct {
				ID string `json:"id"`
			} `json:"builder"`
		} `json:"runDetails"`
	} `json:"predicate"`
}

func (a *AttestationStoreAdapter) AttestationsForDigest(ctx context.Context, owner string, repo string, digest string) ([]core.ProvenanceStatement, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/attestations/sha256:%s", a.releases.BaseURL, owner, repo, digest)
	var payload attestationList
	if err := a.getJSON(ctx, url, &payload); err != nil {
		// A 404 from the attestation store means "no statement", not a
		// transport failure; the verdict for that is "absent".
		if types.KindOf(err) == types.FailureReleaseNotFound {
			return nil, nil
		}
		return nil, err
	}

	statements := make([]core.ProvenanceStatement, 0, len(payload.Attestations))
	for _, attestation := range payload.Attestations {
		statements = append(statements, decodeEnvelope(ctx, attestation.Bundle.DSSEEnvelope))
	}
	return statements, nil
}

func (a *AttestationStoreAdapter) getJSON(ctx context.Context, url string, out any) error {
	return a.releases.getJSON(ctx, url, out)
}

// decodeEnvelope converts one DSSE envelope into the neutral statement
// shape. Malformed envelopes decode to a statement with zero
// signatures, which the verifier treats as unverifiable rather than
// absent.
func decodeEnvelope(ctx context.Context, envelope dsseEnvelope) core.ProvenanceStatement {
	statement := core.ProvenanceStatement{
		SignatureCount: countSignatures(envelope),
	}
	if !strings.Contains(envelope.PayloadType, "in-toto") {
		log.Ctx(ctx).Debug().Str("payload_type", envelope.PayloadType).Msg("unsupported attestation payload type")
		return core.ProvenanceStatement{}
	}
	raw, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("attestation payload is not valid base64")
		return core.ProvenanceStatement{}
	}
	var decoded intotoStatement
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("attestation payload is not a valid statement")
		return core.ProvenanceStatement{}
	}

	statement.PredicateType = decoded.PredicateType
	statement.SourceRepo = decoded.Predicate.BuildDefinition.ExternalParameters.Workflow.Repository
	statement.BuilderID = decoded.Predicate.RunDetails.Builder.ID
	for _, subject := range decoded.Subject {
		if sha, ok := subject.Digest["sha256"]; ok {
			statement.SubjectDigests = append(statement.SubjectDigests, sha)
		}
	}
	return statement
}

func countSignatures(envelope dsseEnvelope) int {
	count := 0
	for _, signature := range envelope.Signatures {
		if strings.TrimSpace(signature.Sig) != "" {
			count++
		}
	}
	return count
}

var _ ports.AttestationStorePort = (*AttestationStoreAdapter)(nil)
