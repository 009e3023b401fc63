package policies

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"extractor-installer/internal/types"
)

// AttestationPolicy decides whether an artifact may be installed given
// its provenance verdict. Mandatory verification fails closed: anything
// other than a verified verdict aborts the item before extraction.
// Opting out is an explicit, recorded decision, never a silent default.
type AttestationPolicy struct {
	Mandatory bool
}

func NewAttestationPolicy(mandatory bool) AttestationPolicy {
	return AttestationPolicy{Mandatory: mandatory}
}

// Admit returns nil when installation may proceed past verification.
func (p AttestationPolicy) Admit(ctx context.Context, ref types.ExtractorReference, result types.AttestationResult) error {
	if result.Verdict == types.VerdictVerified {
		log.Ctx(ctx).Info().
			Str("reference", ref.Slug()).
			Str("builder", result.BuilderID).
			Msg("artifact provenance verified")
		return nil
	}

	if !p.Mandatory {
		// The operator accepted the risk; record it loudly so the
		// decision is visible in the run log.
		log.Ctx(ctx).Warn().
			Str("reference", ref.Slug()).
			Str("verdict", string(result.Verdict)).
			Str("reason", result.Reason).
			Msg("provenance verification skipped by configuration; installing unverified artifact")
		return nil
	}

	// Not verified is not an accusation: attestation-service outages
	// and unsigned legitimate releases land here too.
	return types.NewInstallError(
		types.FailureUntrustedArtifact,
		fmt.Sprintf("artifact for %s could not be verified (%s): %s",
			ref.Slug(), result.Verdict, reasonOrDefault(result.Reason)), nil)
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "provenance verification incomplete"
	}
	return reason
}
