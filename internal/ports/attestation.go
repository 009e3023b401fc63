package ports

import (
	"context"

	"extractor-installer/internal/core"
)

// AttestationStorePort retrieves provenance statements for an artifact
// digest from the hosting platform's attestation store. An empty slice
// with a nil error means the store holds no statement for the digest.
type AttestationStorePort interface {
	AttestationsForDigest(ctx context.Context, owner string, repo string, digest string) ([]core.ProvenanceStatement, error)
}
